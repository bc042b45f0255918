package importer

import (
	"context"
	"strings"

	"github.com/ehri-project/xlsimport/internal/schema"
	"github.com/ehri-project/xlsimport/internal/sheet"
)

// Transformer turns one validated row into an import record. Variants exist
// per profile; they share the field-driven extraction below and differ in
// identifier policy and cross-references.
type Transformer interface {
	Kind() EntityKind
	TransformRow(ctx context.Context, run *RunContext, row sheet.RawRow) (*ImportRecord, error)
}

// metaKeys maps sheet fields onto the structured metadata property keys the
// target system expects.
var metaKeys = map[string]string{
	"ehri_priority":  "ehriPriority",
	"ehri_copyright": "ehriCopyrightIssue",
	"ehri_scope":     "ehriScope",
}

// base carries the extraction steps both transformers share.
type base struct {
	def   *schema.Definition
	store Store
}

// localized builds the entity's text bundle under the run language: every
// i18n field except the contact ones (those live on the primary contact
// fragment), plus the revision note, the description standard tag and the
// newline-joined sources.
func (b base) localized(run *RunContext, row sheet.RawRow) LocalizedText {
	bundle := make(map[string]string)
	for _, f := range b.def.Sheet.I18n() {
		if f.Type == schema.FieldContact {
			continue
		}
		bundle[f.Name] = row.Get(f.Name)
	}
	bundle["desc_revision_history"] = "Imported from EHRI spreadsheet at: " + run.Timestamp
	bundle["desc_rules"] = b.def.Bindings.RulesTag
	if src := b.def.Bindings.SourcesField; src != "" {
		bundle["desc_sources"] = strings.Join(sheet.SplitMultiple(row.Get(src)), "\n")
	}
	return LocalizedText{run.Language: bundle}
}

// notes extracts the typed notes the profile binds; blank cells yield none.
func (b base) notes(row sheet.RawRow) []Note {
	var notes []Note
	for _, nb := range b.def.Bindings.Notes {
		if text := strings.TrimSpace(row.Get(nb.Field)); text != "" {
			notes = append(notes, Note{Kind: nb.Kind, Text: text})
		}
	}
	return notes
}

// altNames extracts parallel/other name forms, one per multi-value entry.
func (b base) altNames(row sheet.RawRow) []AltName {
	var names []AltName
	for _, ab := range b.def.Bindings.AltNames {
		for _, name := range sheet.SplitMultiple(row.Get(ab.Field)) {
			names = append(names, AltName{Kind: ab.Kind, Name: name})
		}
	}
	return names
}

// properties extracts the bound list-valued properties. A property is
// recorded even when its value list is empty.
func (b base) properties(row sheet.RawRow) []Property {
	var props []Property
	for _, f := range b.def.Sheet.Fields {
		propName, bound := b.def.Bindings.Properties[f.Name]
		if !bound {
			continue
		}
		props = append(props, Property{
			Name:   propName,
			Values: sheet.SplitMultiple(row.Get(f.Name)),
		})
	}
	return props
}

// meta coerces the bound metadata fields. Unparseable ints become nil so
// the absence survives into the stored property.
func (b base) meta(row sheet.RawRow) map[string]any {
	meta := make(map[string]any)
	for _, field := range b.def.Bindings.MetaIntFields {
		if n, ok := CoerceInt(row.Get(field)); ok {
			meta[metaKeys[field]] = n
		} else {
			meta[metaKeys[field]] = nil
		}
	}
	for _, field := range b.def.Bindings.MetaBoolFields {
		meta[metaKeys[field]] = CoerceBool(row.Get(field))
	}
	return meta
}

// terms builds one fresh term link per subject/place entry. Nothing is
// deduplicated, within a row or across rows: each row grows its own term
// nodes under the taxonomy root, exactly as the source system did.
func (b base) terms(row sheet.RawRow) []TermLink {
	var links []TermLink
	for _, field := range b.def.Bindings.Subjects {
		for _, name := range sheet.SplitMultiple(row.Get(field)) {
			links = append(links, TermLink{Taxonomy: "subject", Name: name})
		}
	}
	for _, field := range b.def.Bindings.Places {
		for _, name := range sheet.SplitMultiple(row.Get(field)) {
			links = append(links, TermLink{Taxonomy: "place", Name: name})
		}
	}
	return links
}
