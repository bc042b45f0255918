package sheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ehri-project/xlsimport/internal/schema"
)

// ErrHeaderMismatch indicates the heading row does not match the sheet
// definition. Header problems are fatal: no row-level processing follows.
var ErrHeaderMismatch = errors.New("sheet headings do not match definition")

// HeaderError lists every offending heading, not just the first.
type HeaderError struct {
	Unexpected []string // present on the sheet, absent from the definition
	Missing    []string // declared in the definition, absent from the sheet
}

func (e *HeaderError) Error() string {
	var parts []string
	if len(e.Unexpected) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected headings on worksheet: %s",
			strings.Join(e.Unexpected, ", ")))
	}
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("headings not found on worksheet: %s",
			strings.Join(e.Missing, ", ")))
	}
	return strings.Join(parts, "; ")
}

func (e *HeaderError) Unwrap() error { return ErrHeaderMismatch }

// RawRow is one data row: field name -> raw cell value, in declaration
// order, plus the 0-based sheet row it came from.
type RawRow struct {
	// Index is the 0-based physical row on the sheet.
	Index  int
	fields []string
	values map[string]string
}

// Get returns the raw value for a field ("" when absent).
func (r RawRow) Get(name string) string { return r.values[name] }

// Fields returns the field names in declaration order.
func (r RawRow) Fields() []string { return r.fields }

// Line returns the 1-based row number for user-facing messages.
func (r RawRow) Line() int { return r.Index + 1 }

// IsEmpty reports whether every cell in the row is blank after trimming.
func (r RawRow) IsEmpty() bool {
	for _, name := range r.fields {
		if strings.TrimSpace(r.values[name]) != "" {
			return false
		}
	}
	return true
}

// ValidateHeaders compares the heading row against the definition's field
// names as sets: column order is free, but any extra or missing name fails
// with a HeaderError naming every offender.
func ValidateHeaders(g Grid, def *schema.SheetDef) error {
	names := def.Names()
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	have := make(map[string]bool, len(names))
	for col := range names {
		h := strings.TrimSpace(g.Cell(def.HeadingRow, col))
		if h != "" {
			have[h] = true
		}
	}

	herr := &HeaderError{}
	for h := range have {
		if !want[h] {
			herr.Unexpected = append(herr.Unexpected, h)
		}
	}
	for _, n := range names {
		if !have[n] {
			herr.Missing = append(herr.Missing, n)
		}
	}
	if len(herr.Unexpected) > 0 || len(herr.Missing) > 0 {
		return herr
	}
	return nil
}

// ParseRows produces one RawRow per row strictly after the heading row,
// zipping exactly len(def.Fields) cells in column order against the field
// names in declaration order. Callers needing a second pass call ParseRows
// again; there is no shared cursor.
func ParseRows(g Grid, def *schema.SheetDef) []RawRow {
	names := def.Names()
	var rows []RawRow
	for r := def.HeadingRow + 1; r < g.NumRows(); r++ {
		values := make(map[string]string, len(names))
		for col, name := range names {
			values[name] = g.Cell(r, col)
		}
		rows = append(rows, RawRow{Index: r, fields: names, values: values})
	}
	return rows
}

// NumDataRows returns how many rows follow the heading row.
func NumDataRows(g Grid, def *schema.SheetDef) int {
	n := g.NumRows() - (def.HeadingRow + 1)
	if n < 0 {
		return 0
	}
	return n
}
