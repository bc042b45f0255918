package importer

import (
	"github.com/ehri-project/xlsimport/internal/schema"
	"github.com/ehri-project/xlsimport/internal/sheet"
)

const contactNote = "Import from EHRI contact spreadsheet"

// FoldContacts zips the positional contact fields of a row into contact
// fragments. Institutions can hold several addresses, though in practice it
// is usually just a second phone or email; the convention is positional:
// entry i of every multi-value contact field belongs to fragment i.
//
// Fragment 0 is always present, marked primary, and carries the localized
// contact fields (contact type, city, region) plus the country code.
// Fragments beyond 0 carry only their positional values.
func FoldContacts(row sheet.RawRow, def *schema.SheetDef, countryCode, lang string) []ContactFragment {
	primary := ContactFragment{
		Primary:     true,
		CountryCode: countryCode,
		Fields:      map[string]string{},
		I18n:        map[string]string{},
	}
	var positional []schema.FieldDef
	for _, f := range def.Contacts() {
		if f.I18n {
			primary.I18n[f.Name] = row.Get(f.Name)
		} else {
			positional = append(positional, f)
		}
	}
	primary.I18n["note"] = contactNote

	fragments := []ContactFragment{primary}
	for _, f := range positional {
		// Numeric cells read back as "12345.0"; clean before splitting.
		vals := sheet.SplitMultiple(sheet.CleanCell(row.Get(f.Name)))
		for i, val := range vals {
			for i >= len(fragments) {
				fragments = append(fragments, ContactFragment{Fields: map[string]string{}})
			}
			fragments[i].Fields[f.Name] = val
		}
	}
	return fragments
}
