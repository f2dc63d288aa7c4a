package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/fortuna/ligatipp/internal/ingest/fussballdaten"
	"github.com/fortuna/ligatipp/internal/predictions"
	"github.com/fortuna/ligatipp/internal/reconcile"
)

// Orchestrator runs the periodic ingest → reconcile → rescore pipeline.
type Orchestrator struct {
	ingester *fussballdaten.Ingester
	engine   *reconcile.Engine
	preds    *predictions.Service
	config   *Config
	cancel   context.CancelFunc

	// bootstrapped flips after the first full pass; later passes only
	// revisit rounds that still have open fixtures somewhere.
	bootstrapped bool
}

// Config holds scheduler configuration
type Config struct {
	PollInterval    time.Duration // Default: 15m
	Season          string        // e.g., "2025/26"
	CurrentMatchday int           // Highest round worth scraping
	MaxRetries      int           // Default: 3
	RetryDelay      time.Duration // Default: 5s
	FetchPause      time.Duration // Pause between matchday fetches
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval:    15 * time.Minute,
		Season:          "2025/26",
		CurrentMatchday: 16,
		MaxRetries:      3,
		RetryDelay:      5 * time.Second,
		FetchPause:      3 * time.Second,
	}
}

// NewOrchestrator wires the pipeline stages. preds may be nil when
// prediction rescoring is not wanted.
func NewOrchestrator(ingester *fussballdaten.Ingester, engine *reconcile.Engine, preds *predictions.Service, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Orchestrator{
		ingester: ingester,
		engine:   engine,
		preds:    preds,
		config:   config,
	}
}

// Start runs the pipeline immediately and then on every tick until the
// context is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	log.Println("╔════════════════════════════════════════╗")
	log.Println("║   Ligatipp Pipeline Orchestrator       ║")
	log.Println("╚════════════════════════════════════════╝")
	log.Printf("Season: %s (through matchday %d)", o.config.Season, o.config.CurrentMatchday)
	log.Printf("Poll interval: %v", o.config.PollInterval)
	log.Println()

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	ticker := time.NewTicker(o.config.PollInterval)
	defer ticker.Stop()

	// Run immediately on start
	o.runPass(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("→ Pipeline orchestrator stopped")
			return
		case <-ticker.C:
			o.runPass(ctx)
		}
	}
}

// Stop gracefully stops the scheduler
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	if o.ingester != nil {
		o.ingester.Close()
	}
	log.Println("✓ Pipeline orchestrator stopped")
}

func (o *Orchestrator) runPass(ctx context.Context) {
	if err := o.RunOnce(ctx); err != nil && ctx.Err() == nil {
		log.Printf("❌ Pipeline pass failed: %v", err)
	}
}

// RunOnce executes one full pipeline pass: pick the rounds that still
// need data, scrape and reconcile each, then rescore predictions.
func (o *Orchestrator) RunOnce(ctx context.Context) error {
	start := time.Now()
	season := o.config.Season

	days, err := o.targetMatchdays(ctx)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		log.Printf("✓ Season %s fully synced, nothing to do", season)
		return nil
	}

	log.Printf("═══ Pipeline pass: %d matchday(s) to reconcile ═══", len(days))

	for i, matchday := range days {
		if i > 0 {
			// Be polite to the source site between rounds.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.config.FetchPause):
			}
		}

		cands, err := o.ingestWithRetry(ctx, season, matchday)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("  ❌ Matchday %d: giving up after %d attempts: %v", matchday, o.config.MaxRetries, err)
			continue
		}

		sum := o.engine.ReconcileMatchday(ctx, season, matchday, cands)
		log.Printf("  ✓ Matchday %d: %d inserted, %d updated, %d overwrites, %d skipped, %d errors",
			matchday, sum.Inserted, sum.Updated, sum.Overwrites, sum.Skipped, len(sum.Errors))
	}

	if o.preds != nil {
		if scored, err := o.preds.RescoreSeason(ctx, season); err != nil {
			log.Printf("  ⚠️  Rescoring predictions: %v", err)
		} else if scored > 0 {
			log.Printf("  ✓ %d predictions rescored", scored)
		}
	}

	o.bootstrapped = true
	if synced, err := o.engine.FullySynced(ctx, season); err == nil && synced {
		log.Printf("✓ Season %s fully synced", season)
	}
	log.Printf("═══ Pipeline pass complete in %v ═══", time.Since(start).Round(time.Second))
	return nil
}

// ingestWithRetry fetches one round with a bounded retry loop.
func (o *Orchestrator) ingestWithRetry(ctx context.Context, season string, matchday int) ([]fussballdaten.Candidate, error) {
	var lastErr error
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		cands, err := o.ingester.IngestMatchday(ctx, season, matchday)
		if err == nil {
			return cands, nil
		}
		lastErr = err

		log.Printf("  ⚠️  Matchday %d attempt %d/%d failed: %v", matchday, attempt, o.config.MaxRetries, err)
		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.config.RetryDelay):
			}
		}
	}
	return nil, lastErr
}

// targetMatchdays picks the rounds to scrape. The first pass walks the
// whole season up to the current round so fixtures the stores have never
// seen get inserted; later passes only revisit open rounds.
func (o *Orchestrator) targetMatchdays(ctx context.Context) ([]int, error) {
	missing, err := o.engine.MissingMatchdays(ctx, o.config.Season)
	if err != nil {
		return nil, err
	}
	if o.bootstrapped {
		return missing, nil
	}

	days := make([]int, 0, o.config.CurrentMatchday)
	for d := 1; d <= o.config.CurrentMatchday; d++ {
		days = append(days, d)
	}
	for _, d := range missing {
		if d > o.config.CurrentMatchday {
			days = append(days, d)
		}
	}
	return days, nil
}
