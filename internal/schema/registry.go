package schema

import (
	"embed"
	"fmt"
)

//go:embed definitions/*.yaml
var definitionFS embed.FS

// Profile selects one of the shipped sheet layouts. Profiles form a closed
// set: callers pick a compiled definition by tag, never by arbitrary string
// lookup against user input.
type Profile int

const (
	// ProfileRepository imports archival institutions (ISDIAH).
	ProfileRepository Profile = iota
	// ProfileCollection imports archival collections (ISAD(G)).
	ProfileCollection
)

func (p Profile) String() string {
	switch p {
	case ProfileRepository:
		return "repositories"
	case ProfileCollection:
		return "collections"
	default:
		return fmt.Sprintf("profile(%d)", int(p))
	}
}

// ParseProfile maps a CLI/profile name onto its tag.
func ParseProfile(s string) (Profile, error) {
	switch s {
	case "repositories":
		return ProfileRepository, nil
	case "collections":
		return ProfileCollection, nil
	default:
		return 0, fmt.Errorf("unknown import profile %q (want repositories or collections)", s)
	}
}

// NoteKind tags the note sub-records a profile extracts.
type NoteKind string

const (
	NoteMaintenance NoteKind = "maintenance"
	NoteArchivist   NoteKind = "archivist"
	NotePublication NoteKind = "publication"
)

// AltNameKind tags alternate-name sub-records.
type AltNameKind string

const (
	NameParallel AltNameKind = "parallel"
	NameOther    AltNameKind = "other"
)

// NoteBinding maps a sheet field onto a typed note.
type NoteBinding struct {
	Field string
	Kind  NoteKind
}

// AltNameBinding maps a sheet field onto a typed alternate name.
type AltNameBinding struct {
	Field string
	Kind  AltNameKind
}

// Bindings carries the transform-stage wiring for one profile: which fields
// feed the slug, the identifier, notes, alternate names, properties and term
// links. Validation never consults Bindings; it works from the SheetDef alone.
type Bindings struct {
	// NameField supplies the display name the slug is derived from.
	NameField string

	// Identifier generation: prefix + zero-padded counter + country suffix.
	IdentifierPrefix string
	IdentifierFormat string

	// RulesTag names the description standard recorded on every row.
	RulesTag string

	SourcesField string
	CountryField string // repository only: resolved to an alpha-2 code
	ParentField  string // collection only: repository_code cross-reference

	Notes    []NoteBinding
	AltNames []AltNameBinding

	// Properties maps sheet fields onto named list-valued properties.
	Properties map[string]string

	// MetaIntFields and MetaBoolFields feed the "ehrimeta" property with
	// liberally coerced values.
	MetaIntFields  []string
	MetaBoolFields []string

	// Subjects and Places become fresh taxonomy term links per row.
	Subjects []string
	Places   []string

	// Creators are person-name fields linked as authority records.
	Creators []string
}

// Definition pairs a parsed sheet layout with its transform bindings.
type Definition struct {
	Profile  Profile
	Sheet    *SheetDef
	Bindings Bindings
}

var profileFiles = map[Profile]string{
	ProfileRepository: "definitions/repositories.yaml",
	ProfileCollection: "definitions/collections.yaml",
}

var profileBindings = map[Profile]Bindings{
	ProfileRepository: {
		NameField:        "authorized_form_of_name",
		IdentifierPrefix: "r",
		IdentifierFormat: "%06d",
		RulesTag:         "ISDIAH",
		SourcesField:     "sources",
		CountryField:     "country",
		Notes: []NoteBinding{
			{Field: "notes", Kind: NoteMaintenance},
		},
		AltNames: []AltNameBinding{
			{Field: "parallel_forms_of_name", Kind: NameParallel},
			{Field: "other_forms_of_name", Kind: NameOther},
		},
		Properties: map[string]string{
			"language_of_description": "languageOfDescription",
			"script_of_description":   "scriptOfDescription",
		},
		MetaIntFields:  []string{"ehri_priority"},
		MetaBoolFields: []string{"ehri_copyright"},
	},
	ProfileCollection: {
		NameField:        "title",
		IdentifierPrefix: "c",
		IdentifierFormat: "%d",
		RulesTag:         "ISAD(G) 2nd Edition",
		SourcesField:     "sources",
		ParentField:      "repository_code",
		Notes: []NoteBinding{
			{Field: "notes", Kind: NoteMaintenance},
			{Field: "archivist_note", Kind: NoteArchivist},
			{Field: "publication_note", Kind: NotePublication},
		},
		AltNames: []AltNameBinding{
			{Field: "other_forms_of_title", Kind: NameOther},
		},
		Properties: map[string]string{
			"language":                "language",
			"script":                  "script",
			"language_of_description": "languageOfDescription",
			"script_of_description":   "scriptOfDescription",
		},
		MetaIntFields:  []string{"ehri_priority", "ehri_scope"},
		MetaBoolFields: []string{"ehri_copyright"},
		Subjects:       []string{"subjects"},
		Places:         []string{"places"},
		Creators:       []string{"creators"},
	},
}

// ForProfile loads the embedded definition for a profile tag.
func ForProfile(p Profile) (*Definition, error) {
	path, ok := profileFiles[p]
	if !ok {
		return nil, fmt.Errorf("%w: no definition registered for %s", ErrSchema, p)
	}
	data, err := definitionFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrSchema, path, err)
	}
	sheet, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return &Definition{Profile: p, Sheet: sheet, Bindings: profileBindings[p]}, nil
}
