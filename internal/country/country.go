// Package country resolves full country names to ISO-3166 alpha-2 codes.
package country

import (
	"strings"

	"github.com/biter777/countries"
)

// Code resolves a country name ("Netherlands", "United Kingdom") to its
// two-letter code. The lookup is forgiving about case and surrounding
// whitespace but not about spelling.
func Code(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	c := countries.ByName(name)
	if c == countries.Unknown {
		return "", false
	}
	return c.Alpha2(), true
}
