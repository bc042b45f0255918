// Package importer transforms validated spreadsheet rows into structured
// import records — a primary entity plus localized text, contact, name, date
// and term sub-records — and hands them to a persistence store. It owns the
// identifier and slug generation policies for one import run.
package importer

import (
	"time"

	"github.com/ehri-project/xlsimport/internal/schema"
)

// EntityKind tags the primary entity a record describes.
type EntityKind string

const (
	KindRepository EntityKind = "repository"
	KindCollection EntityKind = "collection"
)

// AuthorityKind distinguishes person and corporate-body authority records.
type AuthorityKind string

const (
	AuthorityPerson        AuthorityKind = "person"
	AuthorityCorporateBody AuthorityKind = "corporateBody"
)

// LocalizedText maps a language tag to a field-name → text map.
type LocalizedText map[string]map[string]string

// ContactFragment is one address/contact sub-record. Fragment 0 of a row is
// primary and carries the shared localized fields; later fragments carry
// only their positional field values.
type ContactFragment struct {
	Primary     bool
	CountryCode string
	Fields      map[string]string // positional values: telephone, email, ...
	I18n        map[string]string // primary only: contact_type, city, region, note
}

// AltName is an alternate or parallel form of the entity's name.
type AltName struct {
	Kind schema.AltNameKind
	Name string
}

// Note is a typed free-text annotation.
type Note struct {
	Kind schema.NoteKind
	Text string
}

// DateEvent is a date sub-record extracted from a date cell. End is nil for
// single dates. Actor optionally links the authority the event is attributed
// to.
type DateEvent struct {
	Start time.Time
	End   *time.Time
	Slug  string
	Actor *Authority
}

// TermLink relates the entity to a freshly created taxonomy term node,
// parented under the taxonomy's fixed root. Term nodes are deliberately not
// deduplicated across rows; that mirrors the source system's behaviour.
type TermLink struct {
	Taxonomy string // "subject" or "place"
	Name     string
}

// Property is a named list-of-values attached to the entity.
type Property struct {
	Name   string
	Values []string
}

// Authority is a normalized person or corporate-body reference record,
// reused across entities by exact-name lookup.
type Authority struct {
	ID      string
	Kind    AuthorityKind
	Name    string
	History string
}

// ImportRecord is the validated, structured output for one spreadsheet row,
// ready for the persistence store.
type ImportRecord struct {
	Kind       EntityKind
	Identifier string
	Slug       string
	Rules      string // description standard tag (ISDIAH, ISAD(G) ...)
	Language   string

	// Parent is the identifier of the parent repository, for collections.
	Parent string

	I18n     LocalizedText
	Contacts []ContactFragment
	AltNames []AltName
	Notes    []Note
	Events   []DateEvent
	Terms    []TermLink
	Creators []*Authority

	Properties []Property
	// Meta holds liberally coerced per-row metadata (priority, copyright
	// flags) stored as a single structured property.
	Meta map[string]any
}
