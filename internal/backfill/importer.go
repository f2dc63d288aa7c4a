package backfill

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/fortuna/ligatipp/internal/ingest/fussballdaten"
	"github.com/fortuna/ligatipp/internal/names"
	"github.com/fortuna/ligatipp/internal/reconcile"
)

// Summary totals one import run.
type Summary struct {
	Matchdays  int
	Rows       int
	Inserted   int
	Updated    int
	Overwrites int
	Skipped    int
	Errors     []error
}

// Importer feeds interchange rows through the reconciliation engine, so
// CSV imports obey the same idempotence and never-regress rules as
// scraped data.
type Importer struct {
	engine   *reconcile.Engine
	resolver *names.Resolver
}

// NewImporter wires an importer to the engine. resolver normalizes the
// club names found in the file.
func NewImporter(engine *reconcile.Engine, resolver *names.Resolver) *Importer {
	return &Importer{engine: engine, resolver: resolver}
}

// Import validates and writes a season file. With matchesPerDay > 0 the
// structural validation runs first and any violation aborts the import
// before a single write.
func (imp *Importer) Import(ctx context.Context, season string, rows []Row, matchesPerDay int) (Summary, error) {
	sum := Summary{Rows: len(rows)}

	if matchesPerDay > 0 {
		if errs := ValidateSeason(rows, matchesPerDay); len(errs) > 0 {
			for _, err := range errs {
				log.Printf("  ⚠️  %v", err)
			}
			return sum, fmt.Errorf("season %s: %d validation error(s), nothing imported", season, len(errs))
		}
	}

	byDay := make(map[int][]fussballdaten.Candidate)
	for _, row := range rows {
		gh, ga, played, err := ParseResult(row.Result)
		if err != nil {
			return sum, fmt.Errorf("matchday %d %s vs %s: %w", row.Matchday, row.Home, row.Away, err)
		}
		byDay[row.Matchday] = append(byDay[row.Matchday], fussballdaten.Candidate{
			Home:      imp.canonical(row.Home, season),
			Away:      imp.canonical(row.Away, season),
			GoalsHome: gh,
			GoalsAway: ga,
			Played:    played,
		})
	}

	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	for _, day := range days {
		res := imp.engine.ReconcileMatchday(ctx, season, day, byDay[day])
		sum.Matchdays++
		sum.Inserted += res.Inserted
		sum.Updated += res.Updated
		sum.Overwrites += res.Overwrites
		sum.Skipped += res.Skipped
		sum.Errors = append(sum.Errors, res.Errors...)
	}

	if len(sum.Errors) > 0 {
		return sum, fmt.Errorf("season %s: %d of %d rows failed", season, len(sum.Errors), len(rows))
	}
	return sum, nil
}

// canonical maps a file's club name through the rule table. Names the
// table does not know pass through unchanged; interchange files usually
// carry canonical names already.
func (imp *Importer) canonical(name, season string) string {
	if imp.resolver == nil {
		return name
	}
	if canonical, ok := imp.resolver.ResolveForSeason(name, season); ok {
		return canonical
	}
	return name
}
