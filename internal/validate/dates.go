package validate

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts tried in order. Year-first forms come first so that an
// ambiguous all-numeric date resolves with the year leading, matching the
// convention the sheets are written in. Day-first forms are a fallback for
// unambiguous four-digit-year values.
var (
	yearFirstLayouts = []string{
		"2006-01-02", "2006-1-2",
		"2006/01/02", "2006/1/2",
		"2006.01.02",
		"2006-01", "2006-1", "2006/01",
		"January 2006", "Jan 2006",
		"2006",
	}
	dayFirstLayouts = []string{
		"02-01-2006", "2-1-2006",
		"02/01/2006", "2/1/2006",
		"02.01.2006",
		"2 January 2006", "2 Jan 2006", "Jan 2, 2006",
	}
)

// ParseDate parses one date entry from a date-typed cell. A leading "c"
// (circa) marker is stripped, as is the trailing ".0" float artifact Excel
// leaves on numeric year cells. Bare years and year-month values are
// accepted; impossible calendar dates are not.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	orig := s
	if strings.HasPrefix(s, "c") {
		s = strings.TrimSpace(s[1:])
	}
	if strings.HasSuffix(s, ".0") {
		s = s[:len(s)-2]
	}
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string %q", orig)
	}
	for _, layout := range yearFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date string %q", orig)
}
