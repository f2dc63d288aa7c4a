// Package standings computes league tables from the persisted match set.
// Tables are derived data: recomputed on every query, never stored.
package standings

import (
	"sort"

	"github.com/fortuna/ligatipp/internal/names"
	"github.com/fortuna/ligatipp/internal/store"
)

// Row is one team's line in a computed table.
type Row struct {
	Rank         int    `json:"rank"`
	Team         string `json:"team"`
	Games        int    `json:"games"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	GoalDiff     int    `json:"goal_diff"`
	Points       int    `json:"points"`
}

// ComputeTable builds the season table from played matches. Win 3 points,
// draw 1 each. Sorted descending by points, then goal difference, then
// goals scored; full ties fall back to club name, so permuting the input
// never reshuffles the table.
func ComputeTable(matches []*store.Match, season string) []Row {
	return compute(matches, func(m *store.Match) (string, string, bool) {
		if m.Season != season || !m.Played() {
			return "", "", false
		}
		return m.Home, m.Away, true
	})
}

// ComputeAllTime builds the cross-season table. The resolver folds
// historical club names into their current canonical name first; without
// that a renamed club's history fragments across two rows.
func ComputeAllTime(matches []*store.Match, resolver *names.Resolver) []Row {
	return compute(matches, func(m *store.Match) (string, string, bool) {
		if !m.Played() {
			return "", "", false
		}
		home, away := m.Home, m.Away
		if resolver != nil {
			home = resolver.FoldAll(home)
			away = resolver.FoldAll(away)
		}
		return home, away, true
	})
}

func compute(matches []*store.Match, include func(*store.Match) (home, away string, ok bool)) []Row {
	stats := make(map[string]*Row)
	var order []string

	team := func(name string) *Row {
		r, ok := stats[name]
		if !ok {
			r = &Row{Team: name}
			stats[name] = r
			order = append(order, name)
		}
		return r
	}

	for _, m := range matches {
		homeName, awayName, ok := include(m)
		if !ok {
			continue
		}
		gh, ga := int(m.GoalsHome.Int32), int(m.GoalsAway.Int32)

		home, away := team(homeName), team(awayName)
		home.Games++
		away.Games++
		home.GoalsFor += gh
		home.GoalsAgainst += ga
		away.GoalsFor += ga
		away.GoalsAgainst += gh

		switch {
		case gh > ga:
			home.Wins++
			home.Points += 3
			away.Losses++
		case gh < ga:
			away.Wins++
			away.Points += 3
			home.Losses++
		default:
			home.Draws++
			home.Points++
			away.Draws++
			away.Points++
		}
	}

	rows := make([]Row, 0, len(order))
	for _, name := range order {
		r := stats[name]
		r.GoalDiff = r.GoalsFor - r.GoalsAgainst
		rows = append(rows, *r)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		// Full tie: alphabetical keeps the ranking independent of match
		// set ordering.
		return a.Team < b.Team
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
