package importer

import (
	"context"
	"fmt"
	"strings"
)

// orgMarker prefixes names that denote a corporate body. It matches the
// marker the person-name validation rule exempts.
const orgMarker = "[org] "

// normalizeName is the exact-match key for authority lookup: marker
// stripped, whitespace trimmed and inner runs collapsed.
func normalizeName(name string) (string, AuthorityKind) {
	kind := AuthorityPerson
	if strings.HasPrefix(name, orgMarker) {
		kind = AuthorityCorporateBody
		name = strings.TrimPrefix(name, orgMarker)
	}
	return strings.Join(strings.Fields(name), " "), kind
}

// LinkAuthority resolves a name string to an authority record,
// looking it up by exact normalized name and creating it when absent.
// History text is first-write-wins: an authority that already carries
// history keeps it, and the newly supplied text is logged and dropped
// rather than treated as an error.
func (r *RunContext) LinkAuthority(ctx context.Context, st Store, name, history string) (*Authority, error) {
	normalized, kind := normalizeName(name)
	if normalized == "" {
		return nil, fmt.Errorf("blank authority name %q", name)
	}

	existing, err := st.FindAuthorityByName(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("looking up authority %q: %w", normalized, err)
	}
	if existing == nil {
		created, err := st.CreateAuthority(ctx, &Authority{
			Kind:    kind,
			Name:    normalized,
			History: history,
		})
		if err != nil {
			return nil, fmt.Errorf("creating authority %q: %w", normalized, err)
		}
		return created, nil
	}

	if history != "" {
		if existing.History == "" {
			if err := st.SaveAuthorityHistory(ctx, existing.ID, history); err != nil {
				return nil, fmt.Errorf("saving history for authority %q: %w", normalized, err)
			}
			existing.History = history
		} else if existing.History != history {
			r.log.Info("keeping existing authority history",
				"authority", normalized, "discarded_length", len(history))
		}
	}
	return existing, nil
}
