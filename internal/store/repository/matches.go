package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/ligatipp/internal/store"
)

// MatchRepository handles match data access in the cloud database.
type MatchRepository struct {
	db *store.Database
}

// NewMatchRepository creates a new match repository.
func NewMatchRepository(db *store.Database) *MatchRepository {
	return &MatchRepository{db: db}
}

// Get finds a match by its natural key.
func (r *MatchRepository) Get(ctx context.Context, key store.MatchKey) (*store.Match, error) {
	query := `
		SELECT season, matchday, home, away, goals_home, goals_away, created_at, updated_at
		FROM matches
		WHERE season = $1 AND matchday = $2 AND home = $3 AND away = $4
	`

	m := &store.Match{}
	err := r.db.DB().QueryRowContext(ctx, query, key.Season, key.Matchday, key.Home, key.Away).Scan(
		&m.Season, &m.Matchday, &m.Home, &m.Away,
		&m.GoalsHome, &m.GoalsAway, &m.CreatedAt, &m.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("match %s: %w", key, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying match: %w", err)
	}

	return m, nil
}

// Upsert inserts a match or updates its goals. A NULL incoming goal never
// clears a known one: a played match stays played even when a later
// extraction only sees the fixture as scheduled.
func (r *MatchRepository) Upsert(ctx context.Context, m *store.Match) error {
	query := `
		INSERT INTO matches (season, matchday, home, away, goals_home, goals_away)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (season, matchday, home, away) DO UPDATE SET
			goals_home = COALESCE(EXCLUDED.goals_home, matches.goals_home),
			goals_away = COALESCE(EXCLUDED.goals_away, matches.goals_away),
			updated_at = NOW()
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		m.Season, m.Matchday, m.Home, m.Away, m.GoalsHome, m.GoalsAway,
	)
	if err != nil {
		return fmt.Errorf("upserting match: %w", err)
	}

	return nil
}

// GetBySeason returns all matches of one season, matchday order.
func (r *MatchRepository) GetBySeason(ctx context.Context, season string) ([]*store.Match, error) {
	query := `
		SELECT season, matchday, home, away, goals_home, goals_away, created_at, updated_at
		FROM matches
		WHERE season = $1
		ORDER BY matchday, home
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying season matches: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// GetByMatchday returns one round of fixtures.
func (r *MatchRepository) GetByMatchday(ctx context.Context, season string, matchday int) ([]*store.Match, error) {
	query := `
		SELECT season, matchday, home, away, goals_home, goals_away, created_at, updated_at
		FROM matches
		WHERE season = $1 AND matchday = $2
		ORDER BY home
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season, matchday)
	if err != nil {
		return nil, fmt.Errorf("querying matchday: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// GetAll returns the full match history across every season.
func (r *MatchRepository) GetAll(ctx context.Context) ([]*store.Match, error) {
	query := `
		SELECT season, matchday, home, away, goals_home, goals_away, created_at, updated_at
		FROM matches
		ORDER BY season, matchday, home
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying all matches: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// Seasons returns the distinct season tokens present in the store, newest first.
func (r *MatchRepository) Seasons(ctx context.Context) ([]string, error) {
	rows, err := r.db.DB().QueryContext(ctx, `SELECT DISTINCT season FROM matches ORDER BY season DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying seasons: %w", err)
	}
	defer rows.Close()

	var seasons []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning season: %w", err)
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

// OpenMatchdays returns the matchdays of a season that still contain
// matches without a result, ascending. This drives the scraper's work
// list: only rounds with open fixtures are refetched.
func (r *MatchRepository) OpenMatchdays(ctx context.Context, season string) ([]int, error) {
	query := `
		SELECT DISTINCT matchday FROM matches
		WHERE season = $1 AND (goals_home IS NULL OR goals_away IS NULL)
		ORDER BY matchday ASC
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying open matchdays: %w", err)
	}
	defer rows.Close()

	var days []int
	for rows.Next() {
		var d int
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning matchday: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// CountOpen returns how many matches of the season still lack a result.
func (r *MatchRepository) CountOpen(ctx context.Context, season string) (int, error) {
	var n int
	err := r.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE season = $1 AND (goals_home IS NULL OR goals_away IS NULL)`,
		season,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting open matches: %w", err)
	}
	return n, nil
}

func scanMatches(rows *sql.Rows) ([]*store.Match, error) {
	var matches []*store.Match
	for rows.Next() {
		m := &store.Match{}
		err := rows.Scan(
			&m.Season, &m.Matchday, &m.Home, &m.Away,
			&m.GoalsHome, &m.GoalsAway, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
