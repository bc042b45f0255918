package importer

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnresolvedReference indicates a row references an entity the store does
// not know. Missing parents make downstream consistency impossible, so this
// aborts the whole run, not just the row.
var ErrUnresolvedReference = errors.New("unresolved reference")

// UnresolvedReferenceError names the offending field, value and row.
type UnresolvedReferenceError struct {
	Row   int // 0-based sheet row
	Field string
	Value string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("row %d: unable to resolve %s: %q", e.Row+1, e.Field, e.Value)
}

func (e *UnresolvedReferenceError) Unwrap() error { return ErrUnresolvedReference }

// RepositoryRef is the slice of an already-imported repository the importer
// needs for cross-references: its identifier and the country code its
// primary contact carries.
type RepositoryRef struct {
	Identifier  string
	CountryCode string
}

// Store is the persistence collaborator the transform engine depends on.
// The engine only consumes this narrow contract; it never chooses a
// database. Implementations: store.Memory (tests, dry runs) and
// store/postgres.
type Store interface {
	// CountEntities returns how many entities of a kind exist. Identifier
	// generation derives its counter from this.
	CountEntities(ctx context.Context, kind EntityKind) (int, error)

	// IdentifierExists reports whether an identifier is already taken.
	IdentifierExists(ctx context.Context, kind EntityKind, identifier string) (bool, error)

	// SlugExists reports whether a slug is already in use.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// FindRepository resolves a repository by identifier; (nil, nil) when
	// absent.
	FindRepository(ctx context.Context, identifier string) (*RepositoryRef, error)

	// FindAuthorityByName resolves an authority by exact normalized name;
	// (nil, nil) when absent.
	FindAuthorityByName(ctx context.Context, name string) (*Authority, error)

	// CreateAuthority persists a new authority and returns it with its ID
	// assigned.
	CreateAuthority(ctx context.Context, a *Authority) (*Authority, error)

	// SaveAuthorityHistory sets the history text of an existing authority.
	// Callers only invoke this when the authority has no history yet.
	SaveAuthorityHistory(ctx context.Context, id, history string) error

	// CreateRecord persists one import record with all its sub-records.
	CreateRecord(ctx context.Context, rec *ImportRecord) error
}
