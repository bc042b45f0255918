package importer_test

import (
	"testing"

	"github.com/ehri-project/xlsimport/internal/importer"
	"github.com/ehri-project/xlsimport/internal/schema"
	"github.com/ehri-project/xlsimport/internal/sheet"
)

func contactDef(t *testing.T) *schema.SheetDef {
	t.Helper()
	def, err := schema.NewSheetDef(0, []schema.FieldDef{
		{Name: "contact_type", Type: schema.FieldContact, I18n: true},
		{Name: "city", Type: schema.FieldContact, I18n: true},
		{Name: "telephone", Type: schema.FieldContact, Multiple: true},
		{Name: "email", Type: schema.FieldContact, Multiple: true},
		{Name: "postal_code", Type: schema.FieldContact, Multiple: true},
	})
	if err != nil {
		t.Fatalf("NewSheetDef() error = %v", err)
	}
	return def
}

func contactRow(t *testing.T, def *schema.SheetDef, cells []string) sheet.RawRow {
	t.Helper()
	rows := sheet.ParseRows(sheet.Grid{def.Names(), cells}, def)
	if len(rows) != 1 {
		t.Fatalf("ParseRows() = %d rows, want 1", len(rows))
	}
	return rows[0]
}

// ----------------------------------------------------------------------------
// FoldContacts Tests
// ----------------------------------------------------------------------------

func TestFoldContacts(t *testing.T) {
	def := contactDef(t)
	row := contactRow(t, def, []string{
		"Archive", "Amsterdam", "111,,222", "mail@example.org", "12345.0",
	})

	frags := importer.FoldContacts(row, def, "NL", "en")
	if len(frags) != 2 {
		t.Fatalf("fragments = %d, want 2", len(frags))
	}

	primary := frags[0]
	if !primary.Primary {
		t.Error("fragment 0 is not primary")
	}
	if primary.CountryCode != "NL" {
		t.Errorf("CountryCode = %q, want NL", primary.CountryCode)
	}
	if got := primary.I18n["contact_type"]; got != "Archive" {
		t.Errorf("I18n[contact_type] = %q, want Archive", got)
	}
	if got := primary.I18n["city"]; got != "Amsterdam" {
		t.Errorf("I18n[city] = %q, want Amsterdam", got)
	}
	if primary.I18n["note"] == "" {
		t.Error("primary fragment is missing the import note")
	}
	if got := primary.Fields["telephone"]; got != "111" {
		t.Errorf("Fields[telephone] = %q, want 111", got)
	}
	if got := primary.Fields["email"]; got != "mail@example.org" {
		t.Errorf("Fields[email] = %q, want mail@example.org", got)
	}
	// The Excel float artifact is cleaned before splitting.
	if got := primary.Fields["postal_code"]; got != "12345" {
		t.Errorf("Fields[postal_code] = %q, want 12345", got)
	}

	second := frags[1]
	if second.Primary {
		t.Error("fragment 1 should not be primary")
	}
	if got := second.Fields["telephone"]; got != "222" {
		t.Errorf("fragment 1 Fields[telephone] = %q, want 222", got)
	}
	if _, ok := second.Fields["email"]; ok {
		t.Error("fragment 1 should not carry an email")
	}
	if len(second.I18n) != 0 {
		t.Errorf("fragment 1 I18n = %v, want empty", second.I18n)
	}
}

func TestFoldContactsSingleAddress(t *testing.T) {
	def := contactDef(t)
	row := contactRow(t, def, []string{"", "", "555", "", ""})

	frags := importer.FoldContacts(row, def, "DE", "en")
	if len(frags) != 1 {
		t.Fatalf("fragments = %d, want 1", len(frags))
	}
	if got := frags[0].Fields["telephone"]; got != "555" {
		t.Errorf("Fields[telephone] = %q, want 555", got)
	}
}

func TestFoldContactsAllBlank(t *testing.T) {
	def := contactDef(t)
	row := contactRow(t, def, []string{"", "", "", "", ""})

	frags := importer.FoldContacts(row, def, "", "en")
	// The primary fragment always exists, even with nothing to put on it.
	if len(frags) != 1 {
		t.Fatalf("fragments = %d, want 1", len(frags))
	}
	if !frags[0].Primary {
		t.Error("fragment 0 is not primary")
	}
	if len(frags[0].Fields) != 0 {
		t.Errorf("Fields = %v, want empty", frags[0].Fields)
	}
}

// ----------------------------------------------------------------------------
// Coercion Tests
// ----------------------------------------------------------------------------

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{input: "3", want: 3, wantOK: true},
		{input: "3.0", want: 3, wantOK: true},
		{input: " -1 ", want: -1, wantOK: true},
		{input: "", wantOK: false},
		{input: "high", wantOK: false},
		{input: "3.5", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := importer.CoerceInt(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("CoerceInt(%q) = (%d, %v), want (%d, %v)",
				tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "yes", want: true},
		{input: "Yes", want: true},
		{input: "TRUE", want: true},
		{input: "1", want: true},
		{input: "1.0", want: true},
		{input: "no", want: false},
		{input: "0", want: false},
		{input: "2", want: false},
		{input: "", want: false},
	}
	for _, tt := range tests {
		if got := importer.CoerceBool(tt.input); got != tt.want {
			t.Errorf("CoerceBool(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
