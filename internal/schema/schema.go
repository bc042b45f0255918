// Package schema describes the expected shape of one import spreadsheet:
// the heading row position and an ordered list of field definitions with
// their validation attributes (type, uniqueness, multiplicity, limits,
// choice sets). Definitions are loaded from YAML documents; the two shipped
// sheet layouts are available through the profile registry.
package schema

import (
	"errors"
	"fmt"
)

// ErrSchema indicates a malformed sheet definition. All load-time failures
// wrap this sentinel.
var ErrSchema = errors.New("invalid sheet definition")

// DefaultCharLimit is the maximum length of a char-typed value unless the
// field declares its own limit.
const DefaultCharLimit = 255

// FieldType is the expected content of a spreadsheet column.
type FieldType string

const (
	FieldChar       FieldType = "char"       // short text, length-checked
	FieldText       FieldType = "text"       // free text, no length check
	FieldDate       FieldType = "date"       // year-first calendar date
	FieldPersonName FieldType = "personname" // "Surname, Given" convention
	FieldContact    FieldType = "contact"    // positional contact fragment part
)

var fieldTypes = map[FieldType]bool{
	FieldChar:       true,
	FieldText:       true,
	FieldDate:       true,
	FieldPersonName: true,
	FieldContact:    true,
}

// FieldDef defines one spreadsheet column and its validation rules.
type FieldDef struct {
	Name      string
	Type      FieldType
	Unique    bool     // values must not repeat across rows
	Multiple  bool     // value may hold several ",,"-delimited entries
	Required  bool     // blank cells are an error
	I18n      bool     // value is copied into the localized text bundle
	Limit     int      // max entries for a multiple field; 0 means no limit
	CharLimit int      // max length per entry; 0 means DefaultCharLimit
	Choices   []string // closed set of allowed literals, when non-empty
	Help      string
}

// MaxLen returns the effective per-value length limit for the field.
func (f FieldDef) MaxLen() int {
	if f.CharLimit > 0 {
		return f.CharLimit
	}
	return DefaultCharLimit
}

// SheetDef is an ordered collection of field definitions plus the 0-based
// index of the heading row. Immutable once loaded.
type SheetDef struct {
	HeadingRow int
	Fields     []FieldDef

	byName map[string]int
}

// NewSheetDef validates and indexes a definition assembled in code.
// Duplicate field names, unknown types and contradictory flag combinations
// are rejected here, before any row is read.
func NewSheetDef(headingRow int, fields []FieldDef) (*SheetDef, error) {
	if headingRow < 0 {
		return nil, fmt.Errorf("%w: heading_row must be >= 0, got %d", ErrSchema, headingRow)
	}
	def := &SheetDef{
		HeadingRow: headingRow,
		Fields:     fields,
		byName:     make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: field %d has no name", ErrSchema, i)
		}
		if _, dup := def.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field name %q", ErrSchema, f.Name)
		}
		if f.Type == "" {
			f.Type = FieldChar
			def.Fields[i].Type = FieldChar
		}
		if !fieldTypes[f.Type] {
			return nil, fmt.Errorf("%w: field %q has unknown type %q", ErrSchema, f.Name, f.Type)
		}
		if f.Unique && f.Multiple {
			return nil, fmt.Errorf("%w: field %q cannot be both unique and multiple", ErrSchema, f.Name)
		}
		if f.Limit > 0 && !f.Multiple {
			return nil, fmt.Errorf("%w: field %q declares a limit but is not multiple", ErrSchema, f.Name)
		}
		if f.Limit < 0 || f.CharLimit < 0 {
			return nil, fmt.Errorf("%w: field %q has a negative limit", ErrSchema, f.Name)
		}
		def.byName[f.Name] = i
	}
	return def, nil
}

// Field returns the definition for a named field.
func (d *SheetDef) Field(name string) (FieldDef, bool) {
	i, ok := d.byName[name]
	if !ok {
		return FieldDef{}, false
	}
	return d.Fields[i], true
}

// Names returns all field names in declaration order.
func (d *SheetDef) Names() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// The view methods below are pure projections over Fields. They are cheap
// enough to recompute on every call.

func (d *SheetDef) filter(keep func(FieldDef) bool) []FieldDef {
	var out []FieldDef
	for _, f := range d.Fields {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// Required returns the fields that must not be blank.
func (d *SheetDef) Required() []FieldDef {
	return d.filter(func(f FieldDef) bool { return f.Required })
}

// Uniques returns the fields whose values must not repeat across rows.
func (d *SheetDef) Uniques() []FieldDef {
	return d.filter(func(f FieldDef) bool { return f.Unique })
}

// Multiples returns the fields that allow ",,"-delimited multi-values.
func (d *SheetDef) Multiples() []FieldDef {
	return d.filter(func(f FieldDef) bool { return f.Multiple })
}

// I18n returns the fields copied into the localized text bundle.
func (d *SheetDef) I18n() []FieldDef {
	return d.filter(func(f FieldDef) bool { return f.I18n })
}

// Limited returns the multiple fields with an entry-count limit.
func (d *SheetDef) Limited() []FieldDef {
	return d.filter(func(f FieldDef) bool { return f.Limit > 0 })
}

// Choices returns the fields constrained to a closed value set.
func (d *SheetDef) Choices() []FieldDef {
	return d.filter(func(f FieldDef) bool { return len(f.Choices) > 0 })
}

// OfType returns the fields of the given type.
func (d *SheetDef) OfType(t FieldType) []FieldDef {
	return d.filter(func(f FieldDef) bool { return f.Type == t })
}

// Dates returns the date-typed fields.
func (d *SheetDef) Dates() []FieldDef { return d.OfType(FieldDate) }

// Chars returns the char-typed (length-checked) fields.
func (d *SheetDef) Chars() []FieldDef { return d.OfType(FieldChar) }

// PersonNames returns the person-name-typed fields.
func (d *SheetDef) PersonNames() []FieldDef { return d.OfType(FieldPersonName) }

// Contacts returns the contact-typed fields.
func (d *SheetDef) Contacts() []FieldDef { return d.OfType(FieldContact) }

// IsMultiple reports whether the named field allows multi-values.
func (d *SheetDef) IsMultiple(name string) bool {
	f, ok := d.Field(name)
	return ok && f.Multiple
}
