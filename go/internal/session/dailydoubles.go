package session

import "github.com/quizdeck/quizdeck/go/internal/models"

// dailyDoublesPerRound is the fixed count per regular round.
func dailyDoublesPerRound(round models.Round) int {
	if round == models.RoundDouble {
		return 2
	}
	return 1
}

// generateDailyDoubles draws count distinct positions from the 5x5 grid.
// The prior round's positions are discarded by the caller, so overlap across
// rounds is allowed; within a round the positions are disjoint.
func generateDailyDoubles(count int, randInt func(n int) int) map[string]struct{} {
	positions := make(map[string]struct{}, count)
	for len(positions) < count {
		cat := randInt(models.CategoriesPerRound)
		q := randInt(models.QuestionsPerCategory)
		positions[cellKey(cat, q)] = struct{}{}
	}
	return positions
}

// trueDailyDoubleMax is the wager ceiling: the player's own score, or the
// round maximum (1000 for low-value clues, 2000 for 1000+ clues) when the
// score is lower.
func trueDailyDoubleMax(score, value int) int {
	roundMax := 1000
	if value >= 1000 {
		roundMax = 2000
	}
	if score > roundMax {
		return score
	}
	return roundMax
}

// minDailyDoubleWager is the floor for Daily Double wagers.
const minDailyDoubleWager = 5

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
