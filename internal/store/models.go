package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Match is the atomic fact of the domain: one fixture in one season's
// matchday. Goals are NULL until the match has been played; once set they
// are only ever overwritten by a later correction, never cleared.
type Match struct {
	Season    string        `json:"season"`
	Matchday  int           `json:"matchday"`
	Home      string        `json:"home"`
	Away      string        `json:"away"`
	GoalsHome sql.NullInt32 `json:"goals_home"`
	GoalsAway sql.NullInt32 `json:"goals_away"`
	CreatedAt time.Time     `json:"created_at,omitempty"`
	UpdatedAt time.Time     `json:"updated_at,omitempty"`
}

// MatchKey is the natural key used for idempotent upserts.
type MatchKey struct {
	Season   string
	Matchday int
	Home     string
	Away     string
}

// Key returns the match's natural key.
func (m *Match) Key() MatchKey {
	return MatchKey{Season: m.Season, Matchday: m.Matchday, Home: m.Home, Away: m.Away}
}

func (k MatchKey) String() string {
	return fmt.Sprintf("%s/%02d %s vs %s", k.Season, k.Matchday, k.Home, k.Away)
}

// Played reports whether both goal fields are known.
func (m *Match) Played() bool {
	return m.GoalsHome.Valid && m.GoalsAway.Valid
}

// Result renders the score line, or the "-:-" sentinel for a scheduled match.
func (m *Match) Result() string {
	if !m.Played() {
		return "-:-"
	}
	return fmt.Sprintf("%d:%d", m.GoalsHome.Int32, m.GoalsAway.Int32)
}

// SetGoals marks the match as played with the given score.
func (m *Match) SetGoals(home, away int) {
	m.GoalsHome = sql.NullInt32{Int32: int32(home), Valid: true}
	m.GoalsAway = sql.NullInt32{Int32: int32(away), Valid: true}
}

// Prediction is one user's score guess for a match, submitted before
// kickoff. Points stay NULL until the match result is known.
type Prediction struct {
	ID        int           `json:"id"`
	User      string        `json:"user"`
	Season    string        `json:"season"`
	Matchday  int           `json:"matchday"`
	Home      string        `json:"home"`
	Away      string        `json:"away"`
	PredHome  int           `json:"pred_home"`
	PredAway  int           `json:"pred_away"`
	Points    sql.NullInt32 `json:"points"`
	CreatedAt time.Time     `json:"created_at,omitempty"`
}

// LeaderboardEntry is one row of the per-season points leaderboard.
type LeaderboardEntry struct {
	User   string `json:"user"`
	Season string `json:"season"`
	Points int    `json:"points"`
}
