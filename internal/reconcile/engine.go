// Package reconcile merges extracted match candidates into the two
// persisted backends. The backends are deliberately independent: there is
// no cross-store transaction, only idempotent natural-key upserts plus a
// periodic full re-extraction that converges both stores.
package reconcile

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/fortuna/ligatipp/internal/ingest/fussballdaten"
	"github.com/fortuna/ligatipp/internal/store"
)

// Sink is one idempotent persistence backend for matches.
type Sink interface {
	Name() string
	Get(ctx context.Context, key store.MatchKey) (*store.Match, error)
	Upsert(ctx context.Context, m *store.Match) error
	CountOpen(ctx context.Context, season string) (int, error)
	OpenMatchdays(ctx context.Context, season string) ([]int, error)
}

// Notifier receives matches whose result became known or changed during a
// reconciliation pass.
type Notifier interface {
	PublishResult(ctx context.Context, m *store.Match) error
}

// Metrics tracks reconciliation statistics across a run.
type Metrics struct {
	Candidates int
	Inserted   int
	Updated    int
	Overwrites int
	Skipped    int
	Errors     int
	LastRun    time.Time
}

// Summary reports the outcome of one matchday pass.
type Summary struct {
	Season     string
	Matchday   int
	Inserted   int
	Updated    int
	Overwrites int
	Skipped    int
	Errors     []error
}

// Engine fans each candidate out to every sink with independent failure
// handling: one backend being down never blocks the other, and never
// aborts the rest of the batch.
type Engine struct {
	sinks    []Sink
	notifier Notifier

	// metrics is read by the status endpoint while the scheduler
	// reconciles, so every access goes through mu.
	mu      sync.Mutex
	metrics Metrics
}

// NewEngine creates an engine over the given sinks. notifier may be nil.
func NewEngine(sinks []Sink, notifier Notifier) *Engine {
	return &Engine{
		sinks:    sinks,
		notifier: notifier,
		metrics:  Metrics{LastRun: time.Now()},
	}
}

// ReconcileMatchday upserts one extraction pass into every sink.
func (e *Engine) ReconcileMatchday(ctx context.Context, season string, matchday int, cands []fussballdaten.Candidate) Summary {
	sum := Summary{Season: season, Matchday: matchday}

	for _, cand := range cands {
		incoming := cand.Match(season, matchday)
		notified := false

		for _, sink := range e.sinks {
			outcome, err := e.applyToSink(ctx, sink, incoming, cand)
			if err != nil {
				// Backend failure is isolated: log, count, carry on with
				// the other sink and the remaining candidates.
				log.Printf("  ⚠️  %s: upsert %s failed: %v", sink.Name(), incoming.Key(), err)
				sum.Errors = append(sum.Errors, err)
				continue
			}

			switch outcome {
			case outcomeInserted:
				sum.Inserted++
			case outcomeUpdated:
				sum.Updated++
			case outcomeOverwrite:
				sum.Overwrites++
			case outcomeSkipped:
				sum.Skipped++
			}

			// A played result is published once per candidate, whether it
			// arrived as a fresh insert, closed an open fixture, or
			// corrected a known score.
			if !notified && cand.Played && outcome != outcomeSkipped && outcome != outcomeUnchanged {
				e.notify(ctx, incoming)
				notified = true
			}
		}
	}

	e.mu.Lock()
	e.metrics.LastRun = time.Now()
	e.metrics.Candidates += len(cands)
	e.metrics.Inserted += sum.Inserted
	e.metrics.Updated += sum.Updated
	e.metrics.Overwrites += sum.Overwrites
	e.metrics.Skipped += sum.Skipped
	e.metrics.Errors += len(sum.Errors)
	e.mu.Unlock()

	log.Printf("Reconciled %s matchday %d: %d inserted, %d updated, %d overwrites, %d skipped, %d errors",
		season, matchday, sum.Inserted, sum.Updated, sum.Overwrites, sum.Skipped, len(sum.Errors))

	return sum
}

type outcome int

const (
	outcomeInserted outcome = iota
	outcomeUpdated
	outcomeOverwrite
	outcomeSkipped
	outcomeUnchanged
)

// applyToSink decides how the incoming candidate relates to the stored
// row and performs the upsert. The invariant: a played match is never
// regressed to scheduled, and every conflicting overwrite is logged as an
// audit event.
func (e *Engine) applyToSink(ctx context.Context, sink Sink, incoming *store.Match, cand fussballdaten.Candidate) (outcome, error) {
	existing, err := sink.Get(ctx, incoming.Key())
	switch {
	case errors.Is(err, store.ErrNotFound):
		if err := sink.Upsert(ctx, incoming); err != nil {
			return 0, err
		}
		return outcomeInserted, nil
	case err != nil:
		return 0, err
	}

	if !cand.Played {
		// Scheduled candidate for a known row: nothing to write. The
		// sink-level upsert would preserve the goals anyway, but skipping
		// avoids a pointless write per backend per match.
		return outcomeSkipped, nil
	}

	if existing.Played() && existing.Result() == incoming.Result() {
		return outcomeUnchanged, nil
	}

	conflicting := existing.Played()
	if conflicting {
		// The source corrected a result we already knew. Last write wins;
		// log it so the correction is auditable.
		log.Printf("  ✏️  %s: overwriting %s: %s -> %s",
			sink.Name(), incoming.Key(), existing.Result(), incoming.Result())
	}

	if err := sink.Upsert(ctx, incoming); err != nil {
		return 0, err
	}
	if conflicting {
		return outcomeOverwrite, nil
	}
	return outcomeUpdated, nil
}

func (e *Engine) notify(ctx context.Context, m *store.Match) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.PublishResult(ctx, m); err != nil {
		log.Printf("  ⚠️  publishing result %s: %v", m.Key(), err)
	}
}

// FullySynced reports whether every sink has a result for every match of
// the season. This is the caller's retry-loop exit condition.
func (e *Engine) FullySynced(ctx context.Context, season string) (bool, error) {
	for _, sink := range e.sinks {
		open, err := sink.CountOpen(ctx, season)
		if err != nil {
			return false, err
		}
		if open > 0 {
			return false, nil
		}
	}
	return true, nil
}

// MissingMatchdays returns the union of matchdays that still have open
// fixtures in any sink, ascending. Re-extracting exactly these rounds is
// the consistency backstop that converges the backends.
func (e *Engine) MissingMatchdays(ctx context.Context, season string) ([]int, error) {
	seen := make(map[int]bool)
	var days []int

	for _, sink := range e.sinks {
		sinkDays, err := sink.OpenMatchdays(ctx, season)
		if err != nil {
			// A backend that cannot even be read is skipped here; its
			// matches converge on the next pass once it is reachable.
			log.Printf("  ⚠️  %s: listing open matchdays: %v", sink.Name(), err)
			continue
		}
		for _, d := range sinkDays {
			if !seen[d] {
				seen[d] = true
				days = append(days, d)
			}
		}
	}

	sort.Ints(days)
	return days, nil
}

// MetricsSnapshot returns a copy of the accumulated counters.
func (e *Engine) MetricsSnapshot() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metrics
}
