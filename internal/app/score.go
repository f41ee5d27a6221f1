package app

import (
	"math"
	"time"
)

const (
	basePoints   = 1000
	maxTimeBonus = 1000.0
)

// Score computes the points awarded for an answer submitted elapsed time
// after the question started. Incorrect answers score zero. Correct answers
// earn a flat base plus a speed bonus that decays linearly to zero at ten
// seconds, so a slow correct answer never drops below the base.
func Score(elapsed time.Duration, correct bool) int {
	if !correct {
		return 0
	}
	bonus := math.Max(0, maxTimeBonus-float64(elapsed.Milliseconds())/10)
	return int(math.Round(basePoints + bonus))
}
