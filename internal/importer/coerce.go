package importer

import (
	"strconv"
	"strings"
)

// CoerceInt liberally parses an integer cell, tolerating the ".0" float
// artifact. Unparseable or blank values yield (0, false).
func CoerceInt(val string) (int, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, ".0")
	if val == "" {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CoerceBool liberally parses a boolean cell: "yes", "true" and 1 are true;
// everything else is false.
func CoerceBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "yes", "true":
		return true
	}
	n, ok := CoerceInt(val)
	return ok && n == 1
}
