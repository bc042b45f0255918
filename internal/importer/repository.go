package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ehri-project/xlsimport/internal/country"
	"github.com/ehri-project/xlsimport/internal/schema"
	"github.com/ehri-project/xlsimport/internal/sheet"
)

// RepositoryTransformer maps one ISDIAH row onto a repository record with
// contacts, alternate names and notes.
type RepositoryTransformer struct {
	base
}

// NewRepositoryTransformer builds the repository-profile transformer.
func NewRepositoryTransformer(def *schema.Definition, st Store) *RepositoryTransformer {
	return &RepositoryTransformer{base{def: def, store: st}}
}

func (t *RepositoryTransformer) Kind() EntityKind { return KindRepository }

// TransformRow builds one repository import record. The country code feeds
// both the identifier suffix and the primary contact.
func (t *RepositoryTransformer) TransformRow(ctx context.Context, run *RunContext, row sheet.RawRow) (*ImportRecord, error) {
	bindings := t.def.Bindings

	rawCountry := strings.TrimSpace(row.Get(bindings.CountryField))
	code, ok := country.Code(rawCountry)
	if !ok {
		// Validation checks this; reaching here means the row was never
		// validated.
		return nil, fmt.Errorf("row %d: no country code for %q", row.Line(), rawCountry)
	}

	identifier, err := run.UniqueIdentifier(ctx, t.store, KindRepository,
		bindings.IdentifierPrefix, bindings.IdentifierFormat, code)
	if err != nil {
		return nil, err
	}
	slug, err := run.UniqueSlug(ctx, t.store, row.Get(bindings.NameField))
	if err != nil {
		return nil, err
	}

	return &ImportRecord{
		Kind:       KindRepository,
		Identifier: identifier,
		Slug:       slug,
		Rules:      bindings.RulesTag,
		Language:   run.Language,
		I18n:       t.localized(run, row),
		Contacts:   FoldContacts(row, t.def.Sheet, code, run.Language),
		AltNames:   t.altNames(row),
		Notes:      t.notes(row),
		Properties: t.properties(row),
		Meta:       t.meta(row),
	}, nil
}
