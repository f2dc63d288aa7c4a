package local

import (
	"errors"
	"testing"

	"github.com/fortuna/ligatipp/internal/store"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return fs
}

func scheduled(season string, matchday int, home, away string) *store.Match {
	return &store.Match{Season: season, Matchday: matchday, Home: home, Away: away}
}

func TestUpsertAndGet(t *testing.T) {
	fs := newTestStore(t)

	m := scheduled("2025/26", 1, "FC Bayern München", "RB Leipzig")
	if err := fs.Upsert(m); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := fs.Get(m.Key())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Played() {
		t.Error("scheduled match reported as played")
	}
	if got.Result() != "-:-" {
		t.Errorf("Result() = %q, want -:-", got.Result())
	}
}

func TestGetMissing(t *testing.T) {
	fs := newTestStore(t)
	_, err := fs.Get(store.MatchKey{Season: "2025/26", Matchday: 1, Home: "A", Away: "B"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpsertNeverClearsGoals(t *testing.T) {
	fs := newTestStore(t)

	played := scheduled("2025/26", 1, "SC Freiburg", "VfL Wolfsburg")
	played.SetGoals(2, 1)
	if err := fs.Upsert(played); err != nil {
		t.Fatalf("Upsert played: %v", err)
	}

	// A later extraction that only sees the fixture as scheduled must not
	// regress the stored result.
	if err := fs.Upsert(scheduled("2025/26", 1, "SC Freiburg", "VfL Wolfsburg")); err != nil {
		t.Fatalf("Upsert scheduled: %v", err)
	}

	got, err := fs.Get(played.Key())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Result() != "2:1" {
		t.Errorf("Result() = %q after scheduled re-upsert, want 2:1", got.Result())
	}
}

func TestUpsertCorrectionOverwrites(t *testing.T) {
	fs := newTestStore(t)

	m := scheduled("2025/26", 3, "Hamburger SV", "1. FC Köln")
	m.SetGoals(1, 0)
	if err := fs.Upsert(m); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	corrected := scheduled("2025/26", 3, "Hamburger SV", "1. FC Köln")
	corrected.SetGoals(1, 1)
	if err := fs.Upsert(corrected); err != nil {
		t.Fatalf("Upsert correction: %v", err)
	}

	got, _ := fs.Get(m.Key())
	if got.Result() != "1:1" {
		t.Errorf("Result() = %q after correction, want 1:1", got.Result())
	}
}

func TestUpsertIdempotent(t *testing.T) {
	fs := newTestStore(t)

	m := scheduled("2025/26", 2, "VfB Stuttgart", "FSV Mainz 05")
	m.SetGoals(3, 1)
	for i := 0; i < 3; i++ {
		if err := fs.Upsert(m); err != nil {
			t.Fatalf("Upsert #%d: %v", i, err)
		}
	}

	matches, err := fs.GetBySeason("2025/26")
	if err != nil {
		t.Fatalf("GetBySeason: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d rows after repeated upsert, want 1", len(matches))
	}
}

func TestOpenMatchdaysAndCounts(t *testing.T) {
	fs := newTestStore(t)

	done := scheduled("2025/26", 1, "A", "B")
	done.SetGoals(2, 2)
	for _, m := range []*store.Match{
		done,
		scheduled("2025/26", 2, "A", "C"),
		scheduled("2025/26", 5, "B", "C"),
	} {
		if err := fs.Upsert(m); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	days, err := fs.OpenMatchdays("2025/26")
	if err != nil {
		t.Fatalf("OpenMatchdays: %v", err)
	}
	if len(days) != 2 || days[0] != 2 || days[1] != 5 {
		t.Errorf("OpenMatchdays = %v, want [2 5]", days)
	}

	n, err := fs.CountOpen("2025/26")
	if err != nil {
		t.Fatalf("CountOpen: %v", err)
	}
	if n != 2 {
		t.Errorf("CountOpen = %d, want 2", n)
	}
}

func TestSeasonsAcrossFiles(t *testing.T) {
	fs := newTestStore(t)

	for _, season := range []string{"2024/25", "2025/26"} {
		if err := fs.Upsert(scheduled(season, 1, "A", "B")); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	seasons, err := fs.Seasons()
	if err != nil {
		t.Fatalf("Seasons: %v", err)
	}
	if len(seasons) != 2 || seasons[0] != "2024/25" || seasons[1] != "2025/26" {
		t.Errorf("Seasons = %v", seasons)
	}

	all, err := fs.GetAll()
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("GetAll returned %d matches, want 2", len(all))
	}
}
