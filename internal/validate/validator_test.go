package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/ehri-project/xlsimport/internal/schema"
	"github.com/ehri-project/xlsimport/internal/sheet"
)

func testDef(t *testing.T) *schema.SheetDef {
	t.Helper()
	def, err := schema.NewSheetDef(0, []schema.FieldDef{
		{Name: "name", Unique: true, Required: true},
		{Name: "country", Required: true},
		{Name: "tags", Multiple: true, Limit: 2},
		{Name: "when", Type: schema.FieldDate, Multiple: true},
		{Name: "who", Type: schema.FieldPersonName, Multiple: true},
		{Name: "code", CharLimit: 8},
		{Name: "status", Choices: []string{"Draft", "Final"}},
	})
	if err != nil {
		t.Fatalf("NewSheetDef() error = %v", err)
	}
	return def
}

func headerRow() []string {
	return []string{"name", "country", "tags", "when", "who", "code", "status"}
}

// row builds a full-width data row from a partial field map.
func row(cells map[string]string) []string {
	out := make([]string, len(headerRow()))
	for i, name := range headerRow() {
		out[i] = cells[name]
	}
	return out
}

func validRow(name string) []string {
	return row(map[string]string{
		"name":    name,
		"country": "Netherlands",
		"status":  "Draft",
	})
}

// messages returns every issue message for assertion by substring.
func messages(r *Report) string {
	var b strings.Builder
	for _, i := range r.Issues {
		b.WriteString(i.String())
		b.WriteString("\n")
	}
	return b.String()
}

// ----------------------------------------------------------------------------
// Validator Tests
// ----------------------------------------------------------------------------

func TestValidateCleanSheet(t *testing.T) {
	g := sheet.Grid{
		headerRow(),
		row(map[string]string{
			"name":    "Royal Archive",
			"country": "NL",
			"tags":    "one,,two",
			"when":    "1939,,1945-05-08",
			"who":     "Smith, John,,[org] Acme Corp",
			"code":    "abc",
			"status":  "Final",
		}),
	}

	report, err := New(testDef(t)).Validate(g)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !report.OK() {
		t.Errorf("report not clean:\n%s", messages(report))
	}
}

func TestValidateHeaderMismatchIsTerminal(t *testing.T) {
	g := sheet.Grid{
		{"name", "country", "tags", "when", "who", "code", "condition"},
		row(map[string]string{}), // blank required cells would add issues if reached
	}

	report, err := New(testDef(t)).Validate(g)
	if err == nil {
		t.Fatal("Validate() succeeded, want header error")
	}
	if !errors.Is(err, sheet.ErrHeaderMismatch) {
		t.Errorf("error = %v, want ErrHeaderMismatch", err)
	}

	// One issue per offending heading, attached to the heading row, and no
	// row-level issues at all.
	if len(report.Issues) != 2 {
		t.Fatalf("issues = %d, want 2:\n%s", len(report.Issues), messages(report))
	}
	got := messages(report)
	if !strings.Contains(got, "Unexpected heading on worksheet: condition") {
		t.Errorf("missing unexpected-heading issue:\n%s", got)
	}
	if !strings.Contains(got, "Heading not found on worksheet: status") {
		t.Errorf("missing missing-heading issue:\n%s", got)
	}
	for _, i := range report.Issues {
		if i.Row != 0 {
			t.Errorf("issue on row %d, want heading row 0", i.Row)
		}
	}
}

func TestValidateAccumulates(t *testing.T) {
	g := sheet.Grid{
		headerRow(),
		row(map[string]string{
			// missing name and country
			"tags":   "a,,b,,c",              // over limit
			"when":   "1939,,not-a-date",     // one bad entry
			"who":    "Smith",                // no comma
			"code":   "waytoolongforafield",  // over 8 chars
			"status": "Pending",              // not a choice
		}),
		validRow("Royal Archive"),
	}

	report, err := New(testDef(t)).Validate(g)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	wantFragments := []string{
		"Missing value on required column: name",
		"Missing value on required column: country",
		"Multiple-value field exceeds value limit: 'tags' (limit 2)",
		"Bad date string in field 'when': 'not-a-date'",
		"No 'comma' delimiting surname/given name in person name field 'who': 'Smith'",
		"Field over 8 characters: 'code'",
		"Invalid value for field 'status': 'Pending'. Must be one of: 'Draft', 'Final'",
	}
	got := messages(report)
	for _, want := range wantFragments {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
	if len(report.Issues) != len(wantFragments) {
		t.Errorf("issues = %d, want %d:\n%s", len(report.Issues), len(wantFragments), got)
	}
	if !report.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
}

func TestValidateUniqueColumn(t *testing.T) {
	g := sheet.Grid{
		headerRow(),
		validRow("Royal Archive"),
		validRow("City Museum"),
		validRow("Royal Archive"),
		validRow("Royal Archive"),
	}

	report, err := New(testDef(t)).Validate(g)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	// One issue per duplicated value, attached to the first offending row and
	// listing the 1-based numbers of the rest.
	if len(report.Issues) != 1 {
		t.Fatalf("issues = %d, want 1:\n%s", len(report.Issues), messages(report))
	}
	issue := report.Issues[0]
	if issue.Row != 1 {
		t.Errorf("issue row = %d, want 1", issue.Row)
	}
	want := "Duplicate on unique column: name: 'Royal Archive' also on row(s) 4, 5"
	if issue.Message != want {
		t.Errorf("message = %q, want %q", issue.Message, want)
	}
}

func TestValidateSingleValueField(t *testing.T) {
	g := sheet.Grid{
		headerRow(),
		row(map[string]string{
			"name":    "A,,B", // name is strictly single-value
			"country": "NL",
			"status":  "Draft",
		}),
	}

	report, err := New(testDef(t)).Validate(g)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	got := messages(report)
	if !strings.Contains(got, "Double-comma separator in a strictly single-value field: 'name'") {
		t.Errorf("missing single-value issue:\n%s", got)
	}
}

func TestValidatePersonNames(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "surname comma given", value: "Smith, John", wantErr: false},
		{name: "no comma", value: "Smith", wantErr: true},
		{name: "two commas", value: "Smith, John, Jr", wantErr: true},
		{name: "org marker exempt", value: "[org] Acme, Inc, Ltd", wantErr: false},
		{name: "blank", value: "", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := sheet.Grid{
				headerRow(),
				row(map[string]string{
					"name": "X", "country": "NL", "status": "Draft",
					"who": tt.value,
				}),
			}
			report, err := New(testDef(t)).Validate(g)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if got := report.HasErrors(); got != tt.wantErr {
				t.Errorf("HasErrors() = %v, want %v:\n%s", got, tt.wantErr, messages(report))
			}
		})
	}
}

func TestValidateFailFast(t *testing.T) {
	g := sheet.Grid{
		headerRow(),
		row(map[string]string{}), // missing name, country, status all at once
	}

	report, err := New(testDef(t), FailFast()).Validate(g)
	if err == nil {
		t.Fatal("Validate() succeeded, want abort")
	}
	if !errors.Is(err, ErrAborted) {
		t.Errorf("error = %v, want ErrAborted", err)
	}
	var aerr *AbortError
	if !errors.As(err, &aerr) {
		t.Fatalf("error type = %T, want *AbortError", err)
	}
	if len(report.Issues) != 1 {
		t.Errorf("issues = %d, want 1 (stopped at the first)", len(report.Issues))
	}
	if aerr.Issue != report.Issues[0] {
		t.Errorf("abort issue %+v != reported issue %+v", aerr.Issue, report.Issues[0])
	}
}

func TestCountryCheck(t *testing.T) {
	def, err := schema.NewSheetDef(0, []schema.FieldDef{
		{Name: "country", Required: true},
	})
	if err != nil {
		t.Fatalf("NewSheetDef() error = %v", err)
	}

	g := sheet.Grid{
		{"country"},
		{"Netherlands"},
		{"Atlantis"},
		{""}, // blankness is the required check's business
	}

	report, err := New(def, WithRowCheck(CountryCheck("country"))).Validate(g)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	got := messages(report)
	if !strings.Contains(got, "Unable to find 2-letter country code for: 'Atlantis'") {
		t.Errorf("missing country issue:\n%s", got)
	}
	if strings.Contains(got, "Netherlands") {
		t.Errorf("valid country flagged:\n%s", got)
	}
	// Atlantis plus the blank required cell.
	if len(report.Issues) != 2 {
		t.Errorf("issues = %d, want 2:\n%s", len(report.Issues), got)
	}
}

// ----------------------------------------------------------------------------
// Report Tests
// ----------------------------------------------------------------------------

func TestReport(t *testing.T) {
	r := &Report{}
	if !r.OK() || r.HasErrors() {
		t.Error("empty report should be OK with no errors")
	}

	r.Add(5, "later", false)
	r.Add(2, "earlier warning", true)

	if r.OK() {
		t.Error("OK() = true after Add")
	}
	if !r.HasErrors() {
		t.Error("HasErrors() = false with a non-warning issue")
	}

	sorted := r.Sorted()
	if sorted[0].Row != 2 || sorted[1].Row != 5 {
		t.Errorf("Sorted() order = %v", sorted)
	}
	// The receiver keeps check order.
	if r.Issues[0].Row != 5 {
		t.Error("Sorted() mutated the receiver")
	}

	warnOnly := &Report{}
	warnOnly.Add(1, "just a warning", true)
	if warnOnly.HasErrors() {
		t.Error("warnings alone should not count as errors")
	}
	if warnOnly.OK() {
		t.Error("warnings still make the report non-empty")
	}
}
