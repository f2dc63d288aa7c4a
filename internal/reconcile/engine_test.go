package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/ligatipp/internal/ingest/fussballdaten"
	"github.com/fortuna/ligatipp/internal/store"
)

// memSink is an in-memory Sink for engine tests.
type memSink struct {
	name    string
	rows    map[store.MatchKey]*store.Match
	failing bool
	upserts int
}

func newMemSink(name string) *memSink {
	return &memSink{name: name, rows: make(map[store.MatchKey]*store.Match)}
}

func (s *memSink) Name() string { return s.name }

func (s *memSink) Get(_ context.Context, key store.MatchKey) (*store.Match, error) {
	if s.failing {
		return nil, fmt.Errorf("%s unreachable", s.name)
	}
	m, ok := s.rows[key]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", key, store.ErrNotFound)
	}
	cpy := *m
	return &cpy, nil
}

func (s *memSink) Upsert(_ context.Context, m *store.Match) error {
	if s.failing {
		return fmt.Errorf("%s unreachable", s.name)
	}
	s.upserts++
	existing, ok := s.rows[m.Key()]
	if !ok {
		cpy := *m
		s.rows[m.Key()] = &cpy
		return nil
	}
	if m.GoalsHome.Valid {
		existing.GoalsHome = m.GoalsHome
	}
	if m.GoalsAway.Valid {
		existing.GoalsAway = m.GoalsAway
	}
	return nil
}

func (s *memSink) CountOpen(_ context.Context, season string) (int, error) {
	n := 0
	for _, m := range s.rows {
		if m.Season == season && !m.Played() {
			n++
		}
	}
	return n, nil
}

func (s *memSink) OpenMatchdays(_ context.Context, season string) ([]int, error) {
	seen := map[int]bool{}
	var days []int
	for _, m := range s.rows {
		if m.Season == season && !m.Played() && !seen[m.Matchday] {
			seen[m.Matchday] = true
			days = append(days, m.Matchday)
		}
	}
	sort.Ints(days)
	return days, nil
}

type captureNotifier struct {
	results []string
}

func (n *captureNotifier) PublishResult(_ context.Context, m *store.Match) error {
	n.results = append(n.results, m.Key().String())
	return nil
}

func played(home, away string, gh, ga int) fussballdaten.Candidate {
	return fussballdaten.Candidate{Home: home, Away: away, GoalsHome: gh, GoalsAway: ga, Played: true}
}

func TestReconcileInsertsIntoBothSinks(t *testing.T) {
	cloud, file := newMemSink("cloud"), newMemSink("local")
	e := NewEngine([]Sink{cloud, file}, nil)

	sum := e.ReconcileMatchday(context.Background(), "2025/26", 1, []fussballdaten.Candidate{
		played("FC Bayern München", "RB Leipzig", 3, 1),
		{Home: "SC Freiburg", Away: "VfL Bochum"},
	})

	require.Empty(t, sum.Errors)
	assert.Equal(t, 4, sum.Inserted) // 2 candidates x 2 sinks
	assert.Len(t, cloud.rows, 2)
	assert.Len(t, file.rows, 2)
}

func TestReconcileNeverRegressesPlayed(t *testing.T) {
	cloud, file := newMemSink("cloud"), newMemSink("local")
	e := NewEngine([]Sink{cloud, file}, nil)
	ctx := context.Background()

	e.ReconcileMatchday(ctx, "2025/26", 1, []fussballdaten.Candidate{
		played("Hamburger SV", "1. FC Köln", 2, 0),
	})

	// The same fixture now extracted as scheduled (source hides the result).
	sum := e.ReconcileMatchday(ctx, "2025/26", 1, []fussballdaten.Candidate{
		{Home: "Hamburger SV", Away: "1. FC Köln"},
	})

	assert.Equal(t, 2, sum.Skipped)
	key := store.MatchKey{Season: "2025/26", Matchday: 1, Home: "Hamburger SV", Away: "1. FC Köln"}
	for _, s := range []*memSink{cloud, file} {
		m, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "2:0", m.Result(), "sink %s regressed a played match", s.name)
	}
}

func TestReconcileCorrectionOverwritesAndNotifies(t *testing.T) {
	cloud := newMemSink("cloud")
	notifier := &captureNotifier{}
	e := NewEngine([]Sink{cloud}, notifier)
	ctx := context.Background()

	e.ReconcileMatchday(ctx, "2025/26", 4, []fussballdaten.Candidate{
		played("VfB Stuttgart", "FSV Mainz 05", 1, 0),
	})
	sum := e.ReconcileMatchday(ctx, "2025/26", 4, []fussballdaten.Candidate{
		played("VfB Stuttgart", "FSV Mainz 05", 1, 1),
	})

	assert.Equal(t, 1, sum.Overwrites)
	m, err := cloud.Get(ctx, store.MatchKey{Season: "2025/26", Matchday: 4, Home: "VfB Stuttgart", Away: "FSV Mainz 05"})
	require.NoError(t, err)
	assert.Equal(t, "1:1", m.Result())
	// One publish for the first-seen result, one for the correction.
	assert.Len(t, notifier.results, 2)
}

func TestReconcileNotifiesFirstSeenResult(t *testing.T) {
	cloud, file := newMemSink("cloud"), newMemSink("local")
	notifier := &captureNotifier{}
	e := NewEngine([]Sink{cloud, file}, notifier)
	ctx := context.Background()

	// Already-played fixtures landing in empty stores, as on the first
	// pass over a running season.
	sum := e.ReconcileMatchday(ctx, "2025/26", 9, []fussballdaten.Candidate{
		played("Borussia Dortmund", "Werder Bremen", 2, 1),
		{Home: "SC Freiburg", Away: "VfL Bochum"},
	})

	require.Empty(t, sum.Errors)
	// The played insert is published once, not per sink; the scheduled
	// fixture is not a result and stays off the stream.
	require.Len(t, notifier.results, 1)
	assert.Equal(t, "2025/26/09 Borussia Dortmund vs Werder Bremen", notifier.results[0])

	// Re-reconciling the same score publishes nothing new.
	e.ReconcileMatchday(ctx, "2025/26", 9, []fussballdaten.Candidate{
		played("Borussia Dortmund", "Werder Bremen", 2, 1),
	})
	assert.Len(t, notifier.results, 1)
}

func TestReconcileIdempotent(t *testing.T) {
	cloud := newMemSink("cloud")
	e := NewEngine([]Sink{cloud}, nil)
	ctx := context.Background()

	cands := []fussballdaten.Candidate{
		played("A", "B", 2, 2),
		played("C", "D", 0, 1),
	}
	e.ReconcileMatchday(ctx, "2025/26", 7, cands)
	firstUpserts := cloud.upserts

	sum := e.ReconcileMatchday(ctx, "2025/26", 7, cands)

	assert.Len(t, cloud.rows, 2, "repeat pass must not create duplicates")
	assert.Equal(t, firstUpserts, cloud.upserts, "unchanged results must not be rewritten")
	assert.Zero(t, sum.Inserted+sum.Updated+sum.Overwrites)
}

func TestSinkFailureIsIsolated(t *testing.T) {
	cloud, file := newMemSink("cloud"), newMemSink("local")
	cloud.failing = true
	e := NewEngine([]Sink{cloud, file}, nil)

	sum := e.ReconcileMatchday(context.Background(), "2025/26", 1, []fussballdaten.Candidate{
		played("A", "B", 1, 0),
		played("C", "D", 2, 2),
	})

	// Cloud errors are reported, the local sink still got both rows.
	assert.Len(t, sum.Errors, 2)
	assert.Len(t, file.rows, 2)
}

func TestFullySyncedAndMissingMatchdays(t *testing.T) {
	cloud, file := newMemSink("cloud"), newMemSink("local")
	e := NewEngine([]Sink{cloud, file}, nil)
	ctx := context.Background()

	e.ReconcileMatchday(ctx, "2025/26", 1, []fussballdaten.Candidate{played("A", "B", 1, 0)})
	e.ReconcileMatchday(ctx, "2025/26", 2, []fussballdaten.Candidate{{Home: "A", Away: "C"}})
	// Divergent backend state: matchday 3 open only in the file store.
	require.NoError(t, file.Upsert(ctx, &store.Match{Season: "2025/26", Matchday: 3, Home: "B", Away: "C"}))

	synced, err := e.FullySynced(ctx, "2025/26")
	require.NoError(t, err)
	assert.False(t, synced)

	days, err := e.MissingMatchdays(ctx, "2025/26")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, days)

	// Close the open fixtures; the season converges.
	e.ReconcileMatchday(ctx, "2025/26", 2, []fussballdaten.Candidate{played("A", "C", 4, 0)})
	e.ReconcileMatchday(ctx, "2025/26", 3, []fussballdaten.Candidate{played("B", "C", 0, 0)})

	synced, err = e.FullySynced(ctx, "2025/26")
	require.NoError(t, err)
	assert.True(t, synced)
}

func TestSinkErrorOtherThanNotFound(t *testing.T) {
	cloud := newMemSink("cloud")
	e := NewEngine([]Sink{cloud}, nil)

	// A Get failure must surface as an error, not as a fresh insert.
	cloud.failing = true
	sum := e.ReconcileMatchday(context.Background(), "2025/26", 1, []fussballdaten.Candidate{
		played("A", "B", 1, 0),
	})
	require.Len(t, sum.Errors, 1)
	assert.False(t, errors.Is(sum.Errors[0], store.ErrNotFound))
}

func TestMetricsSnapshotDuringReconcile(t *testing.T) {
	cloud := newMemSink("cloud")
	e := NewEngine([]Sink{cloud}, nil)
	ctx := context.Background()

	// The status handler snapshots while the scheduler reconciles. Run
	// both concurrently so the race detector covers the counter access.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			e.ReconcileMatchday(ctx, "2025/26", i%34+1, []fussballdaten.Candidate{
				played("A", "B", i%5, 1),
			})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			e.MetricsSnapshot()
		}
	}()
	wg.Wait()

	m := e.MetricsSnapshot()
	assert.Equal(t, 50, m.Candidates)
	assert.Zero(t, m.Errors)
}
