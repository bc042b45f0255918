package importer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// RunContext carries the state of one import run: its identity, the
// language rows are recorded under, and the slugs and identifiers handed
// out so far. It is owned by exactly one run and threaded explicitly through
// the row-processing calls — never shared between runs. Two concurrent runs
// against the same store can still race on identifiers; that keeps the
// source system's best-effort, single-writer guarantee.
type RunContext struct {
	ID        uuid.UUID
	Language  string
	Timestamp string

	slugs       map[string]bool
	identifiers map[string]bool
	log         *slog.Logger
}

// NewRun starts a run context for one import pass.
func NewRun(language string, log *slog.Logger) *RunContext {
	if log == nil {
		log = slog.Default()
	}
	return &RunContext{
		ID:          uuid.New(),
		Language:    language,
		Timestamp:   time.Now().Format("2006-01-02 15:04"),
		slugs:       make(map[string]bool),
		identifiers: make(map[string]bool),
		log:         log,
	}
}

// UniqueSlug derives a slug from a display name that is free both in the
// store and within this run, appending -1, -2, ... until one is. The
// run-local set catches intra-batch collisions a store-level check alone
// would miss before the batch commits.
func (r *RunContext) UniqueSlug(ctx context.Context, st Store, value string) (string, error) {
	base := Slugify(value)
	potential := base
	for suffix := 0; ; suffix++ {
		if suffix > 0 {
			potential = fmt.Sprintf("%s-%d", base, suffix)
		}
		if r.slugs[potential] {
			continue
		}
		taken, err := st.SlugExists(ctx, potential)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", potential, err)
		}
		if !taken {
			r.slugs[potential] = true
			return potential, nil
		}
	}
}

const slugLetters = "abcdefghijklmnopqrstuvwxyz"

// RandomSlug returns a free random six-letter slug. Event records get these;
// their display names are not slug material.
func (r *RunContext) RandomSlug(ctx context.Context, st Store) (string, error) {
	for {
		b := make([]byte, 6)
		for i := range b {
			b[i] = slugLetters[rand.IntN(len(slugLetters))]
		}
		potential := string(b)
		if r.slugs[potential] {
			continue
		}
		taken, err := st.SlugExists(ctx, potential)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", potential, err)
		}
		if !taken {
			r.slugs[potential] = true
			return potential, nil
		}
	}
}

// UniqueIdentifier builds an identifier from the store's entity count plus
// one, a prefix and a country-code suffix ("r000042NL"). If the candidate is
// taken it retries with the next counter value. Not atomic across
// concurrent importers; documented limitation, not a guarantee.
func (r *RunContext) UniqueIdentifier(ctx context.Context, st Store, kind EntityKind, prefix, format, suffix string) (string, error) {
	count, err := st.CountEntities(ctx, kind)
	if err != nil {
		return "", fmt.Errorf("counting %s entities: %w", kind, err)
	}
	for n := count + 1; ; n++ {
		candidate := fmt.Sprintf("%s"+format+"%s", prefix, n, suffix)
		if r.identifiers[candidate] {
			continue
		}
		taken, err := st.IdentifierExists(ctx, kind, candidate)
		if err != nil {
			return "", fmt.Errorf("checking identifier %q: %w", candidate, err)
		}
		if !taken {
			r.identifiers[candidate] = true
			return candidate, nil
		}
	}
}
