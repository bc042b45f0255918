package importer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugStripRe  = regexp.MustCompile(`[^\w\s-]`)
	slugHyphenRe = regexp.MustCompile(`[-\s]+`)
)

// asciiFold decomposes accented characters and drops the combining marks and
// whatever non-ASCII remains, so "Département" folds to "Departement".
var asciiFold = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

// Slugify normalizes a display name into a URL-safe token: diacritics
// stripped, non-word characters removed, lowercased, whitespace and hyphen
// runs collapsed to single hyphens.
func Slugify(value string) string {
	folded, _, err := transform.String(asciiFold, value)
	if err != nil {
		folded = value
	}
	s := slugStripRe.ReplaceAllString(folded, "")
	s = strings.ToLower(strings.TrimSpace(s))
	return slugHyphenRe.ReplaceAllString(s, "-")
}
