// Package postgres implements the importer's persistence contract on
// PostgreSQL via pgx. One import record becomes one entity row plus its
// sub-record rows, written in a single transaction.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehri-project/xlsimport/internal/importer"
	"github.com/ehri-project/xlsimport/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is the interface for database operations, satisfied by both
// *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Store is the pgx-backed persistence adapter.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps a connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate applies the target schema. Statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

func (s *Store) CountEntities(ctx context.Context, kind importer.EntityKind) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM entities WHERE kind = $1`, string(kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s entities: %w", kind, err)
	}
	return n, nil
}

func (s *Store) IdentifierExists(ctx context.Context, kind importer.EntityKind, identifier string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM entities WHERE kind = $1 AND identifier = $2)`,
		string(kind), identifier).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking identifier %q: %w", identifier, err)
	}
	return exists, nil
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM slugs WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking slug %q: %w", slug, err)
	}
	return exists, nil
}

func (s *Store) FindRepository(ctx context.Context, identifier string) (*importer.RepositoryRef, error) {
	ref := &importer.RepositoryRef{}
	err := s.pool.QueryRow(ctx, `
		SELECT e.identifier, COALESCE(c.country_code, '')
		FROM entities e
		LEFT JOIN contacts c ON c.entity_id = e.id AND c.is_primary
		WHERE e.kind = $1 AND e.identifier = $2`,
		string(importer.KindRepository), identifier).
		Scan(&ref.Identifier, &ref.CountryCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding repository %q: %w", identifier, err)
	}
	return ref, nil
}

func (s *Store) FindAuthorityByName(ctx context.Context, name string) (*importer.Authority, error) {
	a := &importer.Authority{}
	var kind string
	err := s.pool.QueryRow(ctx,
		`SELECT id, kind, name, COALESCE(history, '') FROM authorities WHERE name = $1`, name).
		Scan(&a.ID, &kind, &a.Name, &a.History)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding authority %q: %w", name, err)
	}
	a.Kind = importer.AuthorityKind(kind)
	return a, nil
}

func (s *Store) CreateAuthority(ctx context.Context, a *importer.Authority) (*importer.Authority, error) {
	created := &importer.Authority{Kind: a.Kind, Name: a.Name, History: a.History}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO authorities (kind, name, history) VALUES ($1, $2, NULLIF($3, '')) RETURNING id`,
		string(a.Kind), a.Name, a.History).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("creating authority %q: %w", a.Name, err)
	}
	return created, nil
}

func (s *Store) SaveAuthorityHistory(ctx context.Context, id, history string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE authorities SET history = $2 WHERE id = $1 AND (history IS NULL OR history = '')`,
		id, history)
	if err != nil {
		return fmt.Errorf("saving authority history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("authority %s not found or history already set", id)
	}
	return nil
}

// CreateRecord writes the entity and all its sub-records in one
// transaction.
func (s *Store) CreateRecord(ctx context.Context, rec *importer.ImportRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	meta, err := json.Marshal(rec.Meta)
	if err != nil {
		return fmt.Errorf("encoding meta: %w", err)
	}

	var entityID string
	err = tx.QueryRow(ctx, `
		INSERT INTO entities (kind, identifier, slug, rules, language, parent_identifier, meta)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7)
		RETURNING id`,
		string(rec.Kind), rec.Identifier, rec.Slug, rec.Rules, rec.Language, rec.Parent, meta).
		Scan(&entityID)
	if err != nil {
		return fmt.Errorf("inserting entity %q: %w", rec.Identifier, err)
	}

	if err := insertSlug(ctx, tx, rec.Slug, entityID); err != nil {
		return err
	}

	for lang, fields := range rec.I18n {
		for field, value := range fields {
			if _, err := tx.Exec(ctx, `
				INSERT INTO entity_i18n (entity_id, language, field, value)
				VALUES ($1, $2, $3, $4)`,
				entityID, lang, field, value); err != nil {
				return fmt.Errorf("inserting i18n field %q: %w", field, err)
			}
		}
	}

	for i, c := range rec.Contacts {
		fields, err := json.Marshal(c.Fields)
		if err != nil {
			return fmt.Errorf("encoding contact fields: %w", err)
		}
		i18n, err := json.Marshal(c.I18n)
		if err != nil {
			return fmt.Errorf("encoding contact i18n: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO contacts (entity_id, position, is_primary, country_code, fields, i18n)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)`,
			entityID, i, c.Primary, c.CountryCode, fields, i18n); err != nil {
			return fmt.Errorf("inserting contact %d: %w", i, err)
		}
	}

	for _, n := range rec.AltNames {
		if _, err := tx.Exec(ctx,
			`INSERT INTO alt_names (entity_id, kind, name) VALUES ($1, $2, $3)`,
			entityID, string(n.Kind), n.Name); err != nil {
			return fmt.Errorf("inserting alternate name: %w", err)
		}
	}

	for _, n := range rec.Notes {
		if _, err := tx.Exec(ctx,
			`INSERT INTO notes (entity_id, kind, content) VALUES ($1, $2, $3)`,
			entityID, string(n.Kind), n.Text); err != nil {
			return fmt.Errorf("inserting note: %w", err)
		}
	}

	for _, ev := range rec.Events {
		var actorID *string
		if ev.Actor != nil {
			actorID = &ev.Actor.ID
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO events (entity_id, slug, start_date, end_date, actor_id)
			VALUES ($1, $2, $3, $4, $5)`,
			entityID, ev.Slug, ev.Start, ev.End, actorID); err != nil {
			return fmt.Errorf("inserting event: %w", err)
		}
		if err := insertSlug(ctx, tx, ev.Slug, entityID); err != nil {
			return err
		}
	}

	for _, t := range rec.Terms {
		if _, err := tx.Exec(ctx,
			`INSERT INTO term_links (entity_id, taxonomy, name) VALUES ($1, $2, $3)`,
			entityID, t.Taxonomy, t.Name); err != nil {
			return fmt.Errorf("inserting term link: %w", err)
		}
	}

	for _, c := range rec.Creators {
		if _, err := tx.Exec(ctx, `
			INSERT INTO entity_creators (entity_id, authority_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			entityID, c.ID); err != nil {
			return fmt.Errorf("linking creator %q: %w", c.Name, err)
		}
	}

	for _, p := range rec.Properties {
		values, err := json.Marshal(p.Values)
		if err != nil {
			return fmt.Errorf("encoding property %q: %w", p.Name, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO properties (entity_id, name, "values") VALUES ($1, $2, $3)`,
			entityID, p.Name, values); err != nil {
			return fmt.Errorf("inserting property %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing record %q: %w", rec.Identifier, err)
	}
	logging.FromContext(ctx).Debug("record stored",
		"kind", rec.Kind, "identifier", rec.Identifier, "slug", rec.Slug)
	return nil
}

func insertSlug(ctx context.Context, tx pgx.Tx, slug, entityID string) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO slugs (slug, entity_id) VALUES ($1, $2)`, slug, entityID); err != nil {
		return fmt.Errorf("registering slug %q: %w", slug, err)
	}
	return nil
}
