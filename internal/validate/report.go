// Package validate applies a sheet definition's rules to parsed spreadsheet
// rows. Checks run in a fixed order — headers, then whole-column checks, then
// independent per-row checks — and by default every problem is accumulated
// into a Report so a user can fix the whole sheet in one pass. Fail-fast mode
// aborts on the first non-warning issue instead.
package validate

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// Issue is one validation finding. Row is the 0-based sheet row; warnings do
// not fail validation on their own but are still reported.
type Issue struct {
	Row     int
	Message string
	Warning bool
}

// Line returns the 1-based row number for display.
func (i Issue) Line() int { return i.Row + 1 }

func (i Issue) String() string {
	return fmt.Sprintf("row %d: %s", i.Line(), i.Message)
}

// Report accumulates issues for one validation pass. Issues are never
// deduplicated.
type Report struct {
	Issues []Issue
}

// Add appends an issue.
func (r *Report) Add(row int, msg string, warning bool) {
	r.Issues = append(r.Issues, Issue{Row: row, Message: msg, Warning: warning})
}

// OK reports whether the pass produced no issues at all.
func (r *Report) OK() bool { return len(r.Issues) == 0 }

// HasErrors reports whether any non-warning issue was recorded.
func (r *Report) HasErrors() bool {
	for _, i := range r.Issues {
		if !i.Warning {
			return true
		}
	}
	return false
}

// Sorted returns the issues ordered by row number for reporting. The
// receiver's order (check order) is left untouched.
func (r *Report) Sorted() []Issue {
	out := make([]Issue, len(r.Issues))
	copy(out, r.Issues)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Row < out[b].Row })
	return out
}

// Log writes every issue, sorted by row, to the logger: warnings at warn
// level, everything else at error level.
func (r *Report) Log(log *slog.Logger) {
	for _, i := range r.Sorted() {
		if i.Warning {
			log.Warn(i.Message, "row", i.Line())
		} else {
			log.Error(i.Message, "row", i.Line())
		}
	}
}

// ErrAborted is returned when fail-fast mode (or a fatal issue) stops a
// validation pass before it scanned the whole sheet.
var ErrAborted = errors.New("validation aborted")

// AbortError carries the issue that stopped a fail-fast pass.
type AbortError struct {
	Issue Issue
}

func (e *AbortError) Error() string { return e.Issue.String() }

func (e *AbortError) Unwrap() error { return ErrAborted }
