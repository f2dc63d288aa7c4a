package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/fortuna/ligatipp/internal/backfill"
	"github.com/fortuna/ligatipp/internal/config"
	"github.com/fortuna/ligatipp/internal/names"
	"github.com/fortuna/ligatipp/internal/reconcile"
	"github.com/fortuna/ligatipp/internal/store"
	"github.com/fortuna/ligatipp/internal/store/local"
	"github.com/fortuna/ligatipp/internal/store/repository"
)

const (
	appName    = "ligatipp-backfill"
	appVersion = "1.0.0"
)

func main() {
	log.Printf("=== %s v%s ===", appName, appVersion)

	cfg := config.Load()

	var (
		dsn           = flag.String("dsn", cfg.DatabaseDSN, "Postgres DSN")
		dataDir       = flag.String("data-dir", cfg.DataDir, "Season-file store directory")
		season        = flag.String("season", cfg.Season, "Season, e.g. 2025/26")
		importFile    = flag.String("import", "", "Season CSV to import")
		exportFile    = flag.String("export", "", "Write the season to this CSV ('-' for stdout)")
		source        = flag.String("source", "cloud", "Export source: cloud or local")
		validateOnly  = flag.Bool("validate", false, "Validate the import file without writing")
		matchesPerDay = flag.Int("matches-per-day", 9, "Fixtures per matchday (0 disables validation)")
	)
	flag.Parse()

	if *importFile == "" && *exportFile == "" {
		log.Fatalf("Specify --import or --export")
	}
	if *season == "" {
		log.Fatalf("Specify --season")
	}

	ctx := context.Background()

	if *importFile != "" {
		runImport(ctx, *importFile, *season, *dsn, *dataDir, *matchesPerDay, *validateOnly)
	}
	if *exportFile != "" {
		runExport(ctx, *exportFile, *season, *source, *dsn, *dataDir)
	}
}

func runImport(ctx context.Context, path, season, dsn, dataDir string, matchesPerDay int, validateOnly bool) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	rows, err := backfill.ReadCSV(f)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	log.Printf("✓ Read %d rows from %s", len(rows), path)

	if validateOnly {
		errs := backfill.ValidateSeason(rows, matchesPerDay)
		for _, e := range errs {
			log.Printf("  ⚠️  %v", e)
		}
		if len(errs) > 0 {
			log.Fatalf("❌ %d validation error(s)", len(errs))
		}
		log.Println("✓ Season file is valid")
		return
	}

	db, err := store.NewDatabase(dsn)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	fileStore, err := local.NewFileStore(dataDir)
	if err != nil {
		log.Fatalf("open season-file store: %v", err)
	}

	engine := reconcile.NewEngine([]reconcile.Sink{
		reconcile.NewDatabaseSink(db),
		reconcile.NewFileSink(fileStore),
	}, nil)

	imp := backfill.NewImporter(engine, names.Default())
	sum, err := imp.Import(ctx, season, rows, matchesPerDay)
	if err != nil {
		log.Fatalf("❌ Import failed: %v", err)
	}

	log.Printf("✓ Imported %d matchday(s): %d inserted, %d updated, %d overwrites, %d skipped",
		sum.Matchdays, sum.Inserted, sum.Updated, sum.Overwrites, sum.Skipped)
}

func runExport(ctx context.Context, path, season, source, dsn, dataDir string) {
	var matches []*store.Match
	var err error

	switch source {
	case "cloud":
		db, dbErr := store.NewDatabase(dsn)
		if dbErr != nil {
			log.Fatalf("connect database: %v", dbErr)
		}
		defer db.Close()
		matches, err = repository.NewMatchRepository(db).GetBySeason(ctx, season)
	case "local":
		fileStore, fsErr := local.NewFileStore(dataDir)
		if fsErr != nil {
			log.Fatalf("open season-file store: %v", fsErr)
		}
		matches, err = fileStore.GetBySeason(season)
	default:
		log.Fatalf("unknown source %q (want cloud or local)", source)
	}
	if err != nil {
		log.Fatalf("load season %s: %v", season, err)
	}
	if len(matches) == 0 {
		log.Fatalf("season %s has no matches in the %s store", season, source)
	}

	out := os.Stdout
	if path != "-" {
		out, err = os.Create(path)
		if err != nil {
			log.Fatalf("create %s: %v", path, err)
		}
		defer out.Close()
	}

	if err := backfill.ExportCSV(out, matches); err != nil {
		log.Fatalf("write csv: %v", err)
	}
	if path != "-" {
		log.Printf("✓ Exported %d matches to %s", len(matches), path)
	}
}
