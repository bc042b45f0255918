package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ehri-project/xlsimport/internal/schema"
	"github.com/ehri-project/xlsimport/internal/sheet"
)

// CollectionTransformer maps one ISAD(G) row onto a collection record
// parented under an already-imported repository, with creator authorities,
// date events and subject/place term links.
type CollectionTransformer struct {
	base
}

// NewCollectionTransformer builds the collection-profile transformer.
func NewCollectionTransformer(def *schema.Definition, st Store) *CollectionTransformer {
	return &CollectionTransformer{base{def: def, store: st}}
}

func (t *CollectionTransformer) Kind() EntityKind { return KindCollection }

// TransformRow builds one collection import record. The parent repository
// must already exist in the store: a miss is an UnresolvedReferenceError,
// which aborts the whole run rather than skipping the row — a collection
// without its repository cannot be kept consistent downstream.
func (t *CollectionTransformer) TransformRow(ctx context.Context, run *RunContext, row sheet.RawRow) (*ImportRecord, error) {
	bindings := t.def.Bindings

	repoCode := strings.TrimSpace(row.Get(bindings.ParentField))
	repo, err := t.store.FindRepository(ctx, repoCode)
	if err != nil {
		return nil, fmt.Errorf("row %d: resolving repository %q: %w", row.Line(), repoCode, err)
	}
	if repo == nil {
		return nil, &UnresolvedReferenceError{Row: row.Index, Field: bindings.ParentField, Value: repoCode}
	}

	identifier, err := run.UniqueIdentifier(ctx, t.store, KindCollection,
		bindings.IdentifierPrefix, bindings.IdentifierFormat, repo.CountryCode)
	if err != nil {
		return nil, err
	}
	slug, err := run.UniqueSlug(ctx, t.store, row.Get(bindings.NameField))
	if err != nil {
		return nil, err
	}

	creators, err := t.creators(ctx, run, row)
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", row.Line(), err)
	}
	// Creation events are attributed to the first creator, when one exists.
	var actor *Authority
	if len(creators) > 0 {
		actor = creators[0]
	}

	var events []DateEvent
	for _, f := range t.def.Sheet.Dates() {
		evs, err := run.DateEvents(ctx, t.store, row.Get(f.Name), actor)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row.Line(), err)
		}
		events = append(events, evs...)
	}

	return &ImportRecord{
		Kind:       KindCollection,
		Identifier: identifier,
		Slug:       slug,
		Rules:      bindings.RulesTag,
		Language:   run.Language,
		Parent:     repo.Identifier,
		I18n:       t.localized(run, row),
		AltNames:   t.altNames(row),
		Notes:      t.notes(row),
		Events:     events,
		Terms:      t.terms(row),
		Creators:   creators,
		Properties: t.properties(row),
		Meta:       t.meta(row),
	}, nil
}

// creators links every entry of the bound creator fields as an authority:
// organization-marked names as corporate bodies, the rest as persons.
func (t *CollectionTransformer) creators(ctx context.Context, run *RunContext, row sheet.RawRow) ([]*Authority, error) {
	var creators []*Authority
	for _, field := range t.def.Bindings.Creators {
		for _, name := range sheet.SplitMultiple(row.Get(field)) {
			a, err := run.LinkAuthority(ctx, t.store, name, "")
			if err != nil {
				return nil, err
			}
			creators = append(creators, a)
		}
	}
	return creators, nil
}
