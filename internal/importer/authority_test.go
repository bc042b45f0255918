package importer_test

import (
	"context"
	"testing"

	"github.com/ehri-project/xlsimport/internal/importer"
	"github.com/ehri-project/xlsimport/internal/store"
)

// ----------------------------------------------------------------------------
// LinkAuthority Tests
// ----------------------------------------------------------------------------

func TestLinkAuthorityCreatesPerson(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	run := importer.NewRun("en", nil)

	a, err := run.LinkAuthority(ctx, st, "Smith, John", "")
	if err != nil {
		t.Fatalf("LinkAuthority() error = %v", err)
	}
	if a.Kind != importer.AuthorityPerson {
		t.Errorf("Kind = %q, want person", a.Kind)
	}
	if a.Name != "Smith, John" {
		t.Errorf("Name = %q, want %q", a.Name, "Smith, John")
	}
	if a.ID == "" {
		t.Error("created authority has no ID")
	}
}

func TestLinkAuthorityOrgMarker(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	run := importer.NewRun("en", nil)

	a, err := run.LinkAuthority(ctx, st, "[org] Acme Corp", "")
	if err != nil {
		t.Fatalf("LinkAuthority() error = %v", err)
	}
	if a.Kind != importer.AuthorityCorporateBody {
		t.Errorf("Kind = %q, want corporateBody", a.Kind)
	}
	if a.Name != "Acme Corp" {
		t.Errorf("Name = %q, want marker stripped", a.Name)
	}
}

func TestLinkAuthorityReusesByNormalizedName(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	run := importer.NewRun("en", nil)

	first, err := run.LinkAuthority(ctx, st, "Smith,   John", "")
	if err != nil {
		t.Fatalf("LinkAuthority() error = %v", err)
	}
	// Inner whitespace runs collapse, so this is the same name.
	second, err := run.LinkAuthority(ctx, st, "  Smith, John  ", "")
	if err != nil {
		t.Fatalf("LinkAuthority() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("same normalized name resolved to two authorities: %q, %q", first.ID, second.ID)
	}
}

func TestLinkAuthorityHistoryFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	run := importer.NewRun("en", nil)

	// Created without history; the first supplied history sticks.
	if _, err := run.LinkAuthority(ctx, st, "Smith, John", ""); err != nil {
		t.Fatalf("LinkAuthority() error = %v", err)
	}
	a, err := run.LinkAuthority(ctx, st, "Smith, John", "born 1900")
	if err != nil {
		t.Fatalf("LinkAuthority() error = %v", err)
	}
	if a.History != "born 1900" {
		t.Errorf("History = %q, want %q", a.History, "born 1900")
	}

	// A later, different history is logged and dropped, never an error.
	a, err = run.LinkAuthority(ctx, st, "Smith, John", "born 1901, probably")
	if err != nil {
		t.Fatalf("LinkAuthority() error = %v", err)
	}
	if a.History != "born 1900" {
		t.Errorf("History = %q, want the original kept", a.History)
	}
}

func TestLinkAuthorityBlankName(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	run := importer.NewRun("en", nil)

	if _, err := run.LinkAuthority(ctx, st, "[org] ", ""); err == nil {
		t.Error("LinkAuthority() succeeded on a blank name, want error")
	}
}

// ----------------------------------------------------------------------------
// DateEvents Tests
// ----------------------------------------------------------------------------

func TestDateEvents(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	run := importer.NewRun("en", nil)

	t.Run("single date", func(t *testing.T) {
		events, err := run.DateEvents(ctx, st, "c1939", nil)
		if err != nil {
			t.Fatalf("DateEvents() error = %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("events = %d, want 1", len(events))
		}
		ev := events[0]
		if ev.Start.Year() != 1939 {
			t.Errorf("Start year = %d, want 1939", ev.Start.Year())
		}
		if ev.End != nil {
			t.Errorf("End = %v, want nil", ev.End)
		}
		if len(ev.Slug) != 6 {
			t.Errorf("Slug = %q, want a six-letter slug", ev.Slug)
		}
	})

	t.Run("start and end", func(t *testing.T) {
		events, err := run.DateEvents(ctx, st, "1939-09-01,,1945-05-08", nil)
		if err != nil {
			t.Fatalf("DateEvents() error = %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("events = %d, want 1", len(events))
		}
		ev := events[0]
		if ev.End == nil {
			t.Fatal("End = nil, want a date")
		}
		if ev.End.Year() != 1945 {
			t.Errorf("End year = %d, want 1945", ev.End.Year())
		}
	})

	t.Run("end before start is dropped", func(t *testing.T) {
		events, err := run.DateEvents(ctx, st, "1945,,1939", nil)
		if err != nil {
			t.Fatalf("DateEvents() error = %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("events = %d, want 1", len(events))
		}
		if events[0].End != nil {
			t.Errorf("End = %v, want nil (out-of-order end dropped)", events[0].End)
		}
	})

	t.Run("blank cell yields nothing", func(t *testing.T) {
		events, err := run.DateEvents(ctx, st, "", nil)
		if err != nil {
			t.Fatalf("DateEvents() error = %v", err)
		}
		if events != nil {
			t.Errorf("events = %v, want nil", events)
		}
	})

	t.Run("actor is attached", func(t *testing.T) {
		actor, err := run.LinkAuthority(ctx, st, "Smith, John", "")
		if err != nil {
			t.Fatalf("LinkAuthority() error = %v", err)
		}
		events, err := run.DateEvents(ctx, st, "1940", actor)
		if err != nil {
			t.Fatalf("DateEvents() error = %v", err)
		}
		if len(events) != 1 || events[0].Actor != actor {
			t.Error("event does not carry its actor")
		}
	})
}
