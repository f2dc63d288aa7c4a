// Package local implements the embedded match backend: one JSON document
// per season under a data directory. It is the second, offline-capable
// sink behind the reconciliation engine; predictions live only in the
// cloud database.
package local

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fortuna/ligatipp/internal/store"
)

// FileStore persists matches as JSON season files. Writes go through a
// temp file plus rename so a crash never leaves a torn season document.
type FileStore struct {
	root string

	mu sync.Mutex
}

// NewFileStore creates the store rooted at dir, e.g. "data".
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(root, "matches"), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) seasonPath(season string) string {
	// "2025/26" is not a valid file name.
	name := strings.ReplaceAll(season, "/", "-") + ".json"
	return filepath.Join(s.root, "matches", name)
}

// Get finds a match by natural key.
func (s *FileStore) Get(key store.MatchKey) (*store.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches, err := s.readSeason(key.Season)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if m.Key() == key {
			cpy := *m
			return &cpy, nil
		}
	}
	return nil, fmt.Errorf("match %s: %w", key, store.ErrNotFound)
}

// Upsert inserts the match or merges its goals into the stored row.
// Known goals overwrite, unknown goals never clear.
func (s *FileStore) Upsert(m *store.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches, err := s.readSeason(m.Season)
	if err != nil {
		return err
	}

	found := false
	for _, existing := range matches {
		if existing.Key() == m.Key() {
			if m.GoalsHome.Valid {
				existing.GoalsHome = m.GoalsHome
			}
			if m.GoalsAway.Valid {
				existing.GoalsAway = m.GoalsAway
			}
			found = true
			break
		}
	}
	if !found {
		cpy := *m
		matches = append(matches, &cpy)
		sort.Slice(matches, func(i, j int) bool {
			if matches[i].Matchday != matches[j].Matchday {
				return matches[i].Matchday < matches[j].Matchday
			}
			return matches[i].Home < matches[j].Home
		})
	}

	return s.writeSeason(m.Season, matches)
}

// GetBySeason returns all matches of one season.
func (s *FileStore) GetBySeason(season string) ([]*store.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readSeason(season)
}

// GetAll returns the matches of every stored season.
func (s *FileStore) GetAll() ([]*store.Match, error) {
	seasons, err := s.Seasons()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*store.Match
	for _, season := range seasons {
		matches, err := s.readSeason(season)
		if err != nil {
			return nil, err
		}
		all = append(all, matches...)
	}
	return all, nil
}

// Seasons lists the stored season tokens, oldest first.
func (s *FileStore) Seasons() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "matches"))
	if err != nil {
		return nil, fmt.Errorf("listing seasons: %w", err)
	}

	var seasons []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		token := strings.TrimSuffix(name, ".json")
		seasons = append(seasons, strings.ReplaceAll(token, "-", "/"))
	}
	sort.Strings(seasons)
	return seasons, nil
}

// CountOpen returns how many matches of the season still lack a result.
func (s *FileStore) CountOpen(season string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches, err := s.readSeason(season)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range matches {
		if !m.Played() {
			n++
		}
	}
	return n, nil
}

// OpenMatchdays returns matchdays with unplayed fixtures, ascending.
func (s *FileStore) OpenMatchdays(season string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches, err := s.readSeason(season)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var days []int
	for _, m := range matches {
		if !m.Played() && !seen[m.Matchday] {
			seen[m.Matchday] = true
			days = append(days, m.Matchday)
		}
	}
	sort.Ints(days)
	return days, nil
}

// readSeason loads a season document; a missing file is an empty season.
// Caller must hold s.mu.
func (s *FileStore) readSeason(season string) ([]*store.Match, error) {
	b, err := os.ReadFile(s.seasonPath(season))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading season %s: %w", season, err)
	}

	var matches []*store.Match
	if err := json.Unmarshal(b, &matches); err != nil {
		return nil, fmt.Errorf("decoding season %s: %w", season, err)
	}
	return matches, nil
}

// writeSeason atomically replaces a season document. Caller must hold s.mu.
func (s *FileStore) writeSeason(season string, matches []*store.Match) error {
	b, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding season %s: %w", season, err)
	}

	path := s.seasonPath(season)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("writing season %s: %w", season, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing season %s: %w", season, err)
	}
	return nil
}
