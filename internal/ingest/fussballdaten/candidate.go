package fussballdaten

import (
	"fmt"

	"github.com/fortuna/ligatipp/internal/store"
)

// Candidate is one extracted fixture: two resolved club names and, when
// the match has demonstrably been played, its score.
type Candidate struct {
	Home      string
	Away      string
	GoalsHome int
	GoalsAway int
	Played    bool
}

// Match converts the candidate into a store row for the given season and
// matchday.
func (c Candidate) Match(season string, matchday int) *store.Match {
	m := &store.Match{
		Season:   season,
		Matchday: matchday,
		Home:     c.Home,
		Away:     c.Away,
	}
	if c.Played {
		m.SetGoals(c.GoalsHome, c.GoalsAway)
	}
	return m
}

func (c Candidate) String() string {
	if !c.Played {
		return fmt.Sprintf("%s vs %s", c.Home, c.Away)
	}
	return fmt.Sprintf("%s %d:%d %s", c.Home, c.GoalsHome, c.GoalsAway, c.Away)
}
