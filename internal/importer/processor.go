package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ehri-project/xlsimport/internal/logging"
	"github.com/ehri-project/xlsimport/internal/schema"
	"github.com/ehri-project/xlsimport/internal/sheet"
	"github.com/ehri-project/xlsimport/internal/validate"
)

// ErrValidationFailed is returned by Run when the validation pass found
// errors: the transform stage is withheld entirely and nothing is written.
var ErrValidationFailed = errors.New("sheet failed validation")

// ProgressFunc reports (rows processed so far, total rows) after each row.
// It runs on the processing goroutine, so it must not block indefinitely
// and must not touch engine state.
type ProgressFunc func(current, total int)

// Option configures a RowProcessor.
type Option func(*RowProcessor)

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *RowProcessor) { p.progress = fn }
}

// WithLanguage sets the language rows are recorded under (default "en").
func WithLanguage(lang string) Option {
	return func(p *RowProcessor) { p.language = lang }
}

// WithLogger sets the processor's logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *RowProcessor) { p.log = log }
}

// FailFast makes the validation pass abort at the first error.
func FailFast() Option {
	return func(p *RowProcessor) { p.failFast = true }
}

// RowProcessor composes a validator and a transformer for one profile. The
// two stages stay separate collaborators: validation never writes, and the
// transformer only sees sheets that validated cleanly.
type RowProcessor struct {
	def         *schema.Definition
	store       Store
	validator   *validate.Validator
	transformer Transformer

	language string
	failFast bool
	progress ProgressFunc
	log      *slog.Logger
}

// Result is the outcome of one Run: the validation report and whatever
// records were produced (none unless validation passed).
type Result struct {
	Report  *validate.Report
	Records []*ImportRecord
}

// NewRowProcessor wires the validator and transformer variant for a
// profile. The profile tag is a closed set; anything else is an error.
func NewRowProcessor(def *schema.Definition, st Store, opts ...Option) (*RowProcessor, error) {
	p := &RowProcessor{
		def:      def,
		store:    st,
		language: "en",
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	var vopts []validate.Option
	if p.failFast {
		vopts = append(vopts, validate.FailFast())
	}

	switch def.Profile {
	case schema.ProfileRepository:
		vopts = append(vopts, validate.WithRowCheck(validate.CountryCheck(def.Bindings.CountryField)))
		p.transformer = NewRepositoryTransformer(def, st)
	case schema.ProfileCollection:
		p.transformer = NewCollectionTransformer(def, st)
	default:
		return nil, fmt.Errorf("no processor for profile %s", def.Profile)
	}
	p.validator = validate.New(def.Sheet, vopts...)
	return p, nil
}

// Validate runs only the validation pass.
func (p *RowProcessor) Validate(g sheet.Grid) (*validate.Report, error) {
	return p.validator.Validate(g)
}

// Run validates the whole sheet and, only if no errors were found,
// transforms and persists every row in order, invoking the progress
// callback after each. A transform or store failure aborts the run; rows
// already handed to the store stay handed over — batch atomicity is the
// store's concern.
func (p *RowProcessor) Run(ctx context.Context, g sheet.Grid) (*Result, error) {
	report, err := p.validator.Validate(g)
	result := &Result{Report: report}
	if err != nil {
		return result, err
	}
	if report.HasErrors() {
		return result, ErrValidationFailed
	}

	rows := sheet.ParseRows(g, p.def.Sheet)
	total := len(rows)
	run := NewRun(p.language, p.log)
	ctx = logging.WithRunID(ctx, run.ID.String())
	p.log.Info("starting import run",
		"run_id", run.ID, "profile", p.def.Profile.String(), "rows", total)

	for i, row := range rows {
		rec, err := p.transformer.TransformRow(ctx, run, row)
		if err != nil {
			return result, err
		}
		if err := p.store.CreateRecord(ctx, rec); err != nil {
			return result, fmt.Errorf("row %d: storing %s %q: %w",
				row.Line(), rec.Kind, rec.Identifier, err)
		}
		result.Records = append(result.Records, rec)
		if p.progress != nil {
			p.progress(i+1, total)
		}
	}

	p.log.Info("import run complete", "run_id", run.ID, "records", len(result.Records))
	return result, nil
}
