// Package predictions grades user score guesses against known results.
package predictions

// Points awarded per tier.
const (
	PointsExact     = 3 // exact score
	PointsGoalDiff  = 2 // correct winning margin, wrong score
	PointsTendency  = 1 // correct outcome only (win/draw/loss direction)
	PointsIncorrect = 0
)

// Score grades a prediction against the actual result. Pure function:
// identical inputs always yield identical output.
//
// Exact score gives 3. A correct non-zero goal difference gives 2 (a
// wrongly-scored draw is only a tendency hit: 2:2 against a predicted
// 1:1 scores 1, not 2). A correct tendency gives 1, anything else 0.
func Score(predHome, predAway, actHome, actAway int) int {
	if predHome == actHome && predAway == actAway {
		return PointsExact
	}

	predDiff := predHome - predAway
	actDiff := actHome - actAway

	if predDiff == actDiff && actDiff != 0 {
		return PointsGoalDiff
	}
	if sign(predDiff) == sign(actDiff) {
		return PointsTendency
	}
	return PointsIncorrect
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
