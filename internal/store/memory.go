// Package store provides implementations of the importer's persistence
// contract. Memory backs tests and dry runs; the postgres subpackage is the
// real adapter.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/ehri-project/xlsimport/internal/importer"
)

// Memory is an in-process Store. It is safe for concurrent use, though an
// import run drives it from a single goroutine.
type Memory struct {
	mu          sync.Mutex
	records     []*importer.ImportRecord
	counts      map[importer.EntityKind]int
	identifiers map[importer.EntityKind]map[string]bool
	slugs       map[string]bool
	repos       map[string]*importer.RepositoryRef
	authorities map[string]*importer.Authority
	nextAuthID  int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		counts:      make(map[importer.EntityKind]int),
		identifiers: make(map[importer.EntityKind]map[string]bool),
		slugs:       make(map[string]bool),
		repos:       make(map[string]*importer.RepositoryRef),
		authorities: make(map[string]*importer.Authority),
	}
}

// SeedRepository registers an already-imported repository so collection
// imports can resolve it.
func (m *Memory) SeedRepository(identifier, countryCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repos[identifier] = &importer.RepositoryRef{Identifier: identifier, CountryCode: countryCode}
	m.markIdentifier(importer.KindRepository, identifier)
	m.counts[importer.KindRepository]++
}

// SeedSlug marks a slug as already taken.
func (m *Memory) SeedSlug(slug string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slugs[slug] = true
}

// Records returns everything created so far, in creation order.
func (m *Memory) Records() []*importer.ImportRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*importer.ImportRecord, len(m.records))
	copy(out, m.records)
	return out
}

func (m *Memory) markIdentifier(kind importer.EntityKind, id string) {
	if m.identifiers[kind] == nil {
		m.identifiers[kind] = make(map[string]bool)
	}
	m.identifiers[kind][id] = true
}

func (m *Memory) CountEntities(_ context.Context, kind importer.EntityKind) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[kind], nil
}

func (m *Memory) IdentifierExists(_ context.Context, kind importer.EntityKind, identifier string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identifiers[kind][identifier], nil
}

func (m *Memory) SlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slugs[slug], nil
}

func (m *Memory) FindRepository(_ context.Context, identifier string) (*importer.RepositoryRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repos[identifier], nil
}

func (m *Memory) FindAuthorityByName(_ context.Context, name string) (*importer.Authority, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authorities[name], nil
}

func (m *Memory) CreateAuthority(_ context.Context, a *importer.Authority) (*importer.Authority, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAuthID++
	created := &importer.Authority{
		ID:      fmt.Sprintf("auth-%d", m.nextAuthID),
		Kind:    a.Kind,
		Name:    a.Name,
		History: a.History,
	}
	m.authorities[a.Name] = created
	return created, nil
}

func (m *Memory) SaveAuthorityHistory(_ context.Context, id, history string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.authorities {
		if a.ID == id {
			a.History = history
			return nil
		}
	}
	return fmt.Errorf("no authority with id %q", id)
}

func (m *Memory) CreateRecord(_ context.Context, rec *importer.ImportRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	m.counts[rec.Kind]++
	m.markIdentifier(rec.Kind, rec.Identifier)
	m.slugs[rec.Slug] = true
	for _, ev := range rec.Events {
		if ev.Slug != "" {
			m.slugs[ev.Slug] = true
		}
	}
	if rec.Kind == importer.KindRepository {
		code := ""
		if len(rec.Contacts) > 0 {
			code = rec.Contacts[0].CountryCode
		}
		m.repos[rec.Identifier] = &importer.RepositoryRef{
			Identifier:  rec.Identifier,
			CountryCode: code,
		}
	}
	return nil
}
