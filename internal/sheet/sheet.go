// Package sheet reads import spreadsheets and turns them into ordered
// field-name to cell-value rows according to a sheet definition. Only the
// first worksheet of a workbook is consulted.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrFileOpen indicates the workbook could not be opened at all.
	ErrFileOpen = errors.New("unable to open spreadsheet file")
	// ErrWorksheetNotFound indicates the workbook has no first sheet.
	ErrWorksheetNotFound = errors.New("data worksheet must be the first sheet in the workbook")
)

// Grid is the raw cell contents of one worksheet: rows of cell values as
// excelize returns them. Trailing empty cells may be absent; Cell pads reads
// past the end of a row with "".
type Grid [][]string

// Cell returns the value at (row, col), or "" when the grid is ragged there.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// NumRows returns the number of physical rows in the grid.
func (g Grid) NumRows() int { return len(g) }

// Open reads the first worksheet of an .xlsx workbook into a Grid.
func Open(path string) (Grid, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileOpen, path, err)
	}
	defer wb.Close()
	return firstSheet(wb)
}

// OpenReader reads the first worksheet of a workbook from a stream.
func OpenReader(r io.Reader) (Grid, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileOpen, err)
	}
	defer wb.Close()
	return firstSheet(wb)
}

func firstSheet(wb *excelize.File) (Grid, error) {
	name := wb.GetSheetName(0)
	if name == "" {
		return nil, ErrWorksheetNotFound
	}
	rows, err := wb.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", ErrFileOpen, name, err)
	}
	return Grid(rows), nil
}

// MultiDelimiter separates the entries of a multi-value cell. A single comma
// is ordinary punctuation; only the double comma splits.
const MultiDelimiter = ",,"

// SplitMultiple splits a raw cell value on the multi-value delimiter,
// trimming each entry and discarding blank ones. A value with no delimiter
// yields one entry; a blank value yields none. Order is preserved: the first
// entry is the primary one for positional fields.
func SplitMultiple(s string) []string {
	parts := strings.Split(s, MultiDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CleanCell normalizes a raw cell value: trims whitespace and strips the
// spurious ".0" suffix Excel appends when a numeric cell is read as text.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, ".0") {
		if n := strings.TrimSuffix(s, ".0"); n != "" && isDigits(n) {
			return n
		}
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
