package usecase

import (
	"math"

	"github.com/samber/lo"
)

// Pacing policy knobs. The pure functions below are the single source of
// truth for adaptive pacing; composers call them instead of reimplementing
// the arithmetic.
const (
	// DefaultQueueCap bounds the size of a composed study queue.
	DefaultQueueCap = 100
	// DefaultTestLimit bounds the number of generated test questions.
	DefaultTestLimit = 50

	// RemedialRetentionThreshold triggers the remedial override: below it the
	// queue contains only unseen/box-1 items and pacing is suppressed.
	RemedialRetentionThreshold = 0.6

	interventionUpperScore = 0.75
	interventionLowerScore = 0.30
	baseReviewTestSize     = 30
	extraReviewTestSize    = 30

	// RecentScoreWindow is how many review-test scores feed the trend signal.
	RecentScoreWindow = 3
)

// DailyNewLimit throttles the number of new items introduced per day by the
// learner's credibility in their most recent test.
func DailyNewLimit(basePace int32, credibility float64) int {
	if basePace < 1 {
		return 0
	}
	return int(math.Round(float64(basePace) * credibility))
}

// InterventionLevel maps the learner's recent review-test scores (0-1 each)
// to a continuous 0-1 intervention signal. Averages at or above 0.75 need no
// intervention, at or below 0.30 full intervention, with a linear ramp in
// between. No scores means no intervention.
func InterventionLevel(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	avg := lo.Sum(scores) / float64(len(scores))
	switch {
	case avg >= interventionUpperScore:
		return 0
	case avg <= interventionLowerScore:
		return 1
	default:
		return (interventionUpperScore - avg) / (interventionUpperScore - interventionLowerScore)
	}
}

// AdjustedPace throttles the base pace by the intervention level.
func AdjustedPace(basePace int32, level float64) int32 {
	return int32(math.Round(float64(basePace) * (1 - level)))
}

// ReviewTestSize lengthens review tests as intervention rises (30-60).
func ReviewTestSize(level float64) int32 {
	return int32(math.Round(baseReviewTestSize + extraReviewTestSize*level))
}
