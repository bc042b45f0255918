package importer

import (
	"context"

	"github.com/ehri-project/xlsimport/internal/sheet"
	"github.com/ehri-project/xlsimport/internal/validate"
)

// DateEvents extracts date sub-records from one date cell. One entry yields
// a start-only event; two yield a start/end pair, but only when the end is
// chronologically after the start — an out-of-order end is dropped silently
// rather than failing the row. That tolerance is deliberate, inherited
// policy. Unparseable entries were already rejected by validation and are
// skipped here.
func (r *RunContext) DateEvents(ctx context.Context, st Store, raw string, actor *Authority) ([]DateEvent, error) {
	entries := sheet.SplitMultiple(raw)
	if len(entries) == 0 {
		return nil, nil
	}

	start, err := validate.ParseDate(entries[0])
	if err != nil {
		return nil, nil
	}
	event := DateEvent{Start: start, Actor: actor}

	if len(entries) > 1 {
		if end, err := validate.ParseDate(entries[1]); err == nil {
			if end.After(start) {
				event.End = &end
			} else {
				r.log.Debug("discarding end date before start date",
					"start", entries[0], "end", entries[1])
			}
		}
	}

	// Events carry random slugs; their dates make poor display names.
	slug, err := r.RandomSlug(ctx, st)
	if err != nil {
		return nil, err
	}
	event.Slug = slug
	return []DateEvent{event}, nil
}
