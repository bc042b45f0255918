// Command xlsimport validates and imports EHRI archival spreadsheets.
//
// Usage:
//
//	xlsimport validate -profile repositories file.xlsx
//	xlsimport import -profile collections [-dry-run] [-lang en] file.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/ehri-project/xlsimport/internal/config"
	"github.com/ehri-project/xlsimport/internal/importer"
	"github.com/ehri-project/xlsimport/internal/logging"
	"github.com/ehri-project/xlsimport/internal/schema"
	"github.com/ehri-project/xlsimport/internal/sheet"
	"github.com/ehri-project/xlsimport/internal/store"
	"github.com/ehri-project/xlsimport/internal/store/postgres"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("import tool failed", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: xlsimport <command> [flags] <file.xlsx>

Commands:
  validate    check a spreadsheet against its profile without importing
  import      validate and import a spreadsheet into the database

Flags:
  -profile    sheet profile: repositories or collections (required)
  -lang       language imported text is recorded under (import only)
  -dry-run    run the full import against an in-memory store (import only)
  -fail-fast  stop validation at the first error
`)
}

func run(args []string) error {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err == nil {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if len(args) < 1 {
		usage()
		return fmt.Errorf("missing command")
	}
	cmd, args := args[0], args[1:]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	profileName := fs.String("profile", "", "sheet profile: repositories or collections")
	lang := fs.String("lang", cfg.Import.Language, "language imported text is recorded under")
	dryRun := fs.Bool("dry-run", false, "import into an in-memory store instead of the database")
	failFast := fs.Bool("fail-fast", false, "stop validation at the first error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		usage()
		return fmt.Errorf("expected exactly one spreadsheet path")
	}
	path := fs.Arg(0)

	profile, err := schema.ParseProfile(*profileName)
	if err != nil {
		return err
	}
	def, err := schema.ForProfile(profile)
	if err != nil {
		return err
	}

	grid, err := sheet.Open(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Import.Timeout)
	defer cancel()

	switch cmd {
	case "validate":
		return runValidate(def, grid, *failFast)
	case "import":
		return runImport(ctx, cfg, def, grid, *lang, *dryRun, *failFast)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// runValidate checks the sheet and reports every issue found. Validation
// never needs a database; an empty in-memory store satisfies the processor.
func runValidate(def *schema.Definition, grid sheet.Grid, failFast bool) error {
	proc, err := newProcessor(def, store.NewMemory(), "en", failFast)
	if err != nil {
		return err
	}

	report, err := proc.Validate(grid)
	report.Log(slog.Default())
	if err != nil {
		return err
	}
	if report.HasErrors() {
		return importer.ErrValidationFailed
	}
	slog.Info("sheet is valid",
		"profile", def.Profile.String(),
		"rows", sheet.NumDataRows(grid, def.Sheet),
		"warnings", len(report.Issues))
	return nil
}

func runImport(ctx context.Context, cfg *config.Config, def *schema.Definition, grid sheet.Grid, lang string, dryRun, failFast bool) error {
	var st importer.Store
	if dryRun {
		slog.Info("dry run: importing into an in-memory store")
		st = store.NewMemory()
	} else {
		pg, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pg.pool.Close()
		if err := pg.store.Migrate(ctx); err != nil {
			return err
		}
		st = pg.store
	}

	proc, err := newProcessor(def, st, lang, failFast)
	if err != nil {
		return err
	}

	result, err := proc.Run(ctx, grid)
	if result != nil && result.Report != nil {
		result.Report.Log(slog.Default())
	}
	if err != nil {
		return err
	}
	slog.Info("import finished", "records", len(result.Records), "dry_run", dryRun)
	return nil
}

func newProcessor(def *schema.Definition, st importer.Store, lang string, failFast bool) (*importer.RowProcessor, error) {
	opts := []importer.Option{
		importer.WithLanguage(lang),
		importer.WithProgress(func(current, total int) {
			slog.Debug("progress", "current", current, "total", total)
		}),
	}
	if failFast {
		opts = append(opts, importer.FailFast())
	}
	return importer.NewRowProcessor(def, st, opts...)
}

type pgHandle struct {
	pool  *pgxpool.Pool
	store *postgres.Store
}

// connect builds the pgx pool from config and verifies the connection.
func connect(ctx context.Context, cfg *config.Config) (*pgHandle, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required unless -dry-run is set")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return &pgHandle{pool: pool, store: postgres.New(pool)}, nil
}
