package schema

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// sheetYAML is the on-disk shape of a sheet definition. Fields are a list of
// single-key maps so that declaration order is preserved:
//
//	heading_row: 0
//	fields:
//	  - country:
//	      required: true
//	  - authorized_form_of_name:
//	      unique: true
//	      required: true
//	      i18n: true
type sheetYAML struct {
	HeadingRow int                        `yaml:"heading_row"`
	Fields     []map[string]*fieldYAML    `yaml:"fields"`
}

type fieldYAML struct {
	Type      string   `yaml:"type"`
	Unique    bool     `yaml:"unique"`
	Multiple  bool     `yaml:"multiple"`
	Required  bool     `yaml:"required"`
	I18n      bool     `yaml:"i18n"`
	Limit     int      `yaml:"limit"`
	CharLimit int      `yaml:"char_limit"`
	Choices   []string `yaml:"choices"`
	Help      string   `yaml:"help"`
}

// Load reads a YAML sheet definition. Malformed documents, duplicate field
// names and contradictory attribute combinations all fail with ErrSchema.
func Load(r io.Reader) (*SheetDef, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading definition: %v", ErrSchema, err)
	}
	return Parse(data)
}

// Parse builds a SheetDef from YAML bytes.
func Parse(data []byte) (*SheetDef, error) {
	var doc sheetYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if len(doc.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields declared", ErrSchema)
	}

	fields := make([]FieldDef, 0, len(doc.Fields))
	for i, entry := range doc.Fields {
		if len(entry) != 1 {
			return nil, fmt.Errorf("%w: fields[%d] must hold exactly one field name", ErrSchema, i)
		}
		for name, attrs := range entry {
			f := FieldDef{Name: name, Type: FieldChar}
			if attrs != nil {
				if attrs.Type != "" {
					f.Type = FieldType(attrs.Type)
				}
				f.Unique = attrs.Unique
				f.Multiple = attrs.Multiple
				f.Required = attrs.Required
				f.I18n = attrs.I18n
				f.Limit = attrs.Limit
				f.CharLimit = attrs.CharLimit
				f.Choices = attrs.Choices
				f.Help = attrs.Help
			}
			fields = append(fields, f)
		}
	}

	return NewSheetDef(doc.HeadingRow, fields)
}
