package standings

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/ligatipp/internal/names"
	"github.com/fortuna/ligatipp/internal/store"
)

func playedMatch(season string, matchday int, home, away string, gh, ga int) *store.Match {
	m := &store.Match{Season: season, Matchday: matchday, Home: home, Away: away}
	m.SetGoals(gh, ga)
	return m
}

func threeTeamSeason() []*store.Match {
	// A beats B 2:0, B draws C 1:1, A loses to C 0:1.
	return []*store.Match{
		playedMatch("2025/26", 1, "A", "B", 2, 0),
		playedMatch("2025/26", 2, "B", "C", 1, 1),
		playedMatch("2025/26", 3, "A", "C", 0, 1),
	}
}

func TestComputeTableThreeTeams(t *testing.T) {
	table := ComputeTable(threeTeamSeason(), "2025/26")
	require.Len(t, table, 3)

	want := []Row{
		{Rank: 1, Team: "C", Games: 2, Wins: 1, Draws: 1, Losses: 0, GoalsFor: 2, GoalsAgainst: 1, GoalDiff: 1, Points: 4},
		{Rank: 2, Team: "A", Games: 2, Wins: 1, Draws: 0, Losses: 1, GoalsFor: 2, GoalsAgainst: 1, GoalDiff: 1, Points: 3},
		{Rank: 3, Team: "B", Games: 2, Wins: 0, Draws: 1, Losses: 1, GoalsFor: 1, GoalsAgainst: 3, GoalDiff: -2, Points: 1},
	}
	assert.Equal(t, want, table)
}

func TestComputeTableIgnoresScheduledAndOtherSeasons(t *testing.T) {
	matches := append(threeTeamSeason(),
		&store.Match{Season: "2025/26", Matchday: 4, Home: "A", Away: "B"}, // scheduled
		playedMatch("2024/25", 1, "A", "B", 9, 0),                         // other season
	)

	table := ComputeTable(matches, "2025/26")
	require.Len(t, table, 3)
	assert.Equal(t, 2, table[0].Games)
	assert.Equal(t, "C", table[0].Team)
}

func TestComputeTableStableUnderReordering(t *testing.T) {
	matches := []*store.Match{
		playedMatch("2025/26", 1, "A", "B", 1, 0),
		playedMatch("2025/26", 1, "C", "D", 1, 0),
		playedMatch("2025/26", 2, "B", "A", 1, 0),
		playedMatch("2025/26", 2, "D", "C", 1, 0),
		playedMatch("2025/26", 3, "A", "C", 2, 2),
		playedMatch("2025/26", 3, "B", "D", 2, 2),
	}

	want := ComputeTable(matches, "2025/26")
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := make([]*store.Match, len(matches))
		copy(shuffled, matches)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := ComputeTable(shuffled, "2025/26")
		assert.Equal(t, want, got, "permutation %d changed the ranking", i)
	}
}

func TestComputeTableTieBreakOrder(t *testing.T) {
	// X and Y level on points; X ahead on goal difference. Y and Z level
	// on points and difference; Y ahead on goals scored.
	matches := []*store.Match{
		playedMatch("2025/26", 1, "X", "Q", 4, 0),
		playedMatch("2025/26", 2, "Y", "Q", 3, 1),
		playedMatch("2025/26", 3, "Z", "Q", 2, 0),
	}

	table := ComputeTable(matches, "2025/26")
	require.Len(t, table, 4)
	assert.Equal(t, []string{"X", "Y", "Z", "Q"}, []string{table[0].Team, table[1].Team, table[2].Team, table[3].Team})
	assert.Equal(t, []int{1, 2, 3, 4}, []int{table[0].Rank, table[1].Rank, table[2].Rank, table[3].Rank})
}

func TestComputeAllTimeFoldsRenamedClub(t *testing.T) {
	resolver := names.Default()
	matches := []*store.Match{
		// Stored under the era-correct name before the 1966/67 rename.
		playedMatch("1963/64", 1, "Meidericher SV", "Hamburger SV", 2, 0),
		playedMatch("1970/71", 1, "MSV Duisburg", "Hamburger SV", 1, 1),
	}

	table := ComputeAllTime(matches, resolver)
	require.Len(t, table, 2)

	assert.Equal(t, "MSV Duisburg", table[0].Team)
	assert.Equal(t, 2, table[0].Games, "renamed club's history must aggregate into one row")
	assert.Equal(t, 4, table[0].Points)
}

func TestComputeAllTimeAcrossSeasons(t *testing.T) {
	matches := append(threeTeamSeason(),
		playedMatch("2024/25", 1, "A", "C", 2, 0),
	)

	table := ComputeAllTime(matches, names.Default())
	require.Len(t, table, 3)
	// A gains 3 points from the earlier season and overtakes C.
	assert.Equal(t, "A", table[0].Team)
	assert.Equal(t, 6, table[0].Points)
	assert.Equal(t, 3, table[0].Games)
}
