package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ehri-project/xlsimport/internal/country"
	"github.com/ehri-project/xlsimport/internal/schema"
	"github.com/ehri-project/xlsimport/internal/sheet"
)

// orgMarker prefixes person-name entries that denote a corporate body rather
// than a person; such entries are exempt from the surname-comma convention.
const orgMarker = "[org] "

// RowCheck is an extra per-row rule a profile can hang onto a Validator,
// beyond the checks derived from the sheet definition itself.
type RowCheck func(v *Validator, row sheet.RawRow) error

// Option configures a Validator.
type Option func(*Validator)

// FailFast makes the validator stop at the first non-warning issue instead
// of accumulating the full report. The default accumulates: spreadsheet
// correction is interactive, and users want the whole list in one pass.
func FailFast() Option {
	return func(v *Validator) { v.failFast = true }
}

// WithRowCheck appends an extra per-row check.
func WithRowCheck(c RowCheck) Option {
	return func(v *Validator) { v.rowChecks = append(v.rowChecks, c) }
}

// CountryCheck verifies that the named field resolves to a two-letter
// country code. Used by the repository profile, where the code feeds
// identifier generation.
func CountryCheck(field string) RowCheck {
	return func(v *Validator, row sheet.RawRow) error {
		val := strings.TrimSpace(row.Get(field))
		if val == "" {
			return nil // blankness is the required-column check's business
		}
		if _, ok := country.Code(val); !ok {
			return v.add(row.Index,
				fmt.Sprintf("Unable to find 2-letter country code for: '%s'", val), false)
		}
		return nil
	}
}

// Validator applies one sheet definition's rules to a parsed grid.
type Validator struct {
	def       *schema.SheetDef
	failFast  bool
	rowChecks []RowCheck

	report *Report
}

// New builds a validator for a sheet definition.
func New(def *schema.SheetDef, opts ...Option) *Validator {
	v := &Validator{def: def}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Definition returns the sheet definition the validator was built from.
func (v *Validator) Definition() *schema.SheetDef { return v.def }

// Validate runs the full pass over a grid: headers first (a mismatch is
// terminal), then whole-column checks, then every row-level check on every
// row. The returned Report holds whatever was accumulated before the pass
// ended; err is non-nil only for terminal conditions (header mismatch,
// fail-fast abort).
func (v *Validator) Validate(g sheet.Grid) (*Report, error) {
	v.report = &Report{}

	if err := sheet.ValidateHeaders(g, v.def); err != nil {
		var herr *sheet.HeaderError
		if errors.As(err, &herr) {
			for _, h := range herr.Unexpected {
				v.report.Add(v.def.HeadingRow, "Unexpected heading on worksheet: "+h, false)
			}
			for _, h := range herr.Missing {
				v.report.Add(v.def.HeadingRow, "Heading not found on worksheet: "+h, false)
			}
		}
		return v.report, err
	}

	rows := sheet.ParseRows(g, v.def)

	// Column-level checks run once over the whole sheet before any
	// row-level check.
	if err := v.checkUniqueColumns(rows); err != nil {
		return v.report, err
	}
	if err := v.checkRequiredColumns(rows); err != nil {
		return v.report, err
	}

	for _, row := range rows {
		if err := v.validateRow(row); err != nil {
			return v.report, err
		}
	}
	return v.report, nil
}

// validateRow runs every row-level check. The checks are independent; errors
// accumulate with no early exit within the row (unless fail-fast).
func (v *Validator) validateRow(row sheet.RawRow) error {
	checks := []func(sheet.RawRow) error{
		v.checkMultiples,
		v.checkLimited,
		v.checkPersonNames,
		v.checkDates,
		v.checkCharLength,
		v.checkChoices,
	}
	for _, check := range checks {
		if err := check(row); err != nil {
			return err
		}
	}
	for _, check := range v.rowChecks {
		if err := check(v, row); err != nil {
			return err
		}
	}
	return nil
}

// add records an issue; in fail-fast mode a non-warning issue aborts the
// pass by returning an AbortError.
func (v *Validator) add(row int, msg string, warning bool) error {
	v.report.Add(row, msg, warning)
	if v.failFast && !warning {
		return &AbortError{Issue: Issue{Row: row, Message: msg, Warning: warning}}
	}
	return nil
}

// checkRequiredColumns flags every blank cell in a required column.
func (v *Validator) checkRequiredColumns(rows []sheet.RawRow) error {
	for _, f := range v.def.Required() {
		for _, row := range rows {
			if strings.TrimSpace(row.Get(f.Name)) == "" {
				err := v.add(row.Index,
					fmt.Sprintf("Missing value on required column: %s", f.Name), false)
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkUniqueColumns groups the values of each unique column and flags every
// group with more than one member: one issue per value, attached to the
// first offending row and listing the 1-based numbers of the rest. Blank
// cells are ignored.
func (v *Validator) checkUniqueColumns(rows []sheet.RawRow) error {
	for _, f := range v.def.Uniques() {
		order := []string{}
		byValue := map[string][]int{}
		for _, row := range rows {
			val := row.Get(f.Name)
			if strings.TrimSpace(val) == "" {
				continue
			}
			if _, seen := byValue[val]; !seen {
				order = append(order, val)
			}
			byValue[val] = append(byValue[val], row.Index)
		}
		for _, val := range order {
			dupes := byValue[val]
			if len(dupes) < 2 {
				continue
			}
			lines := make([]string, 0, len(dupes)-1)
			for _, r := range dupes[1:] {
				lines = append(lines, fmt.Sprintf("%d", r+1))
			}
			err := v.add(dupes[0],
				fmt.Sprintf("Duplicate on unique column: %s: '%s' also on row(s) %s",
					f.Name, val, strings.Join(lines, ", ")), false)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// checkMultiples flags the multi-value delimiter in single-value fields.
func (v *Validator) checkMultiples(row sheet.RawRow) error {
	for _, name := range row.Fields() {
		if v.def.IsMultiple(name) {
			continue
		}
		if len(sheet.SplitMultiple(row.Get(name))) > 1 {
			err := v.add(row.Index,
				fmt.Sprintf("Double-comma separator in a strictly single-value field: '%s'", name), false)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// checkLimited enforces the declared entry-count limit on multiple fields.
func (v *Validator) checkLimited(row sheet.RawRow) error {
	for _, f := range v.def.Limited() {
		if n := len(sheet.SplitMultiple(row.Get(f.Name))); n > f.Limit {
			err := v.add(row.Index,
				fmt.Sprintf("Multiple-value field exceeds value limit: '%s' (limit %d)",
					f.Name, f.Limit), false)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// checkPersonNames enforces the "Surname, Given" convention: exactly one
// comma per entry. Entries carrying the organization marker are exempt.
func (v *Validator) checkPersonNames(row sheet.RawRow) error {
	for _, f := range v.def.PersonNames() {
		for _, item := range sheet.SplitMultiple(row.Get(f.Name)) {
			if strings.HasPrefix(item, orgMarker) {
				continue
			}
			var err error
			switch n := strings.Count(item, ","); {
			case n < 1:
				err = v.add(row.Index,
					fmt.Sprintf("No 'comma' delimiting surname/given name in person name field '%s': '%s'",
						f.Name, item), false)
			case n > 1:
				err = v.add(row.Index,
					fmt.Sprintf("Multiple 'commas' in name field '%s': '%s'", f.Name, item), false)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// checkDates parses every entry of every date field.
func (v *Validator) checkDates(row sheet.RawRow) error {
	for _, f := range v.def.Dates() {
		for _, item := range sheet.SplitMultiple(row.Get(f.Name)) {
			if _, perr := ParseDate(item); perr != nil {
				err := v.add(row.Index,
					fmt.Sprintf("Bad date string in field '%s': '%s'", f.Name, item), false)
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkCharLength enforces the per-value length limit on char fields,
// treating every value as a multi-value for counting purposes.
func (v *Validator) checkCharLength(row sheet.RawRow) error {
	for _, f := range v.def.Chars() {
		for _, item := range sheet.SplitMultiple(row.Get(f.Name)) {
			if len([]rune(item)) > f.MaxLen() {
				err := v.add(row.Index,
					fmt.Sprintf("Field over %d characters: '%s'", f.MaxLen(), f.Name), false)
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkChoices enforces closed value sets. The comparison is exact and
// case-sensitive against the raw cell value.
func (v *Validator) checkChoices(row sheet.RawRow) error {
	for _, f := range v.def.Choices() {
		val := row.Get(f.Name)
		ok := false
		for _, c := range f.Choices {
			if val == c {
				ok = true
				break
			}
		}
		if !ok {
			quoted := make([]string, len(f.Choices))
			for i, c := range f.Choices {
				quoted[i] = "'" + c + "'"
			}
			err := v.add(row.Index,
				fmt.Sprintf("Invalid value for field '%s': '%s'. Must be one of: %s",
					f.Name, val, strings.Join(quoted, ", ")), false)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
