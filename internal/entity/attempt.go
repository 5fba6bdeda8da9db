package entity

import (
	"math"
	"time"
)

// AttemptAnswer is one answered item within a submitted test.
type AttemptAnswer struct {
	ItemID      int64  `json:"item_id"`
	Correct     bool   `json:"correct"`
	GivenAnswer string `json:"given_answer,omitempty"`
}

// TestAttempt is the immutable record of one submitted test. Attempts are
// append-only; they are never updated after insertion.
type TestAttempt struct {
	ID          int64           `json:"id"`
	TestID      string          `json:"test_id"`
	LearnerID   int64           `json:"learner_id"`
	ListID      int64           `json:"list_id"`
	SubmittedAt time.Time       `json:"submitted_at"`
	Answers     []AttemptAnswer `json:"answers"`

	// Score is the correct/answered ratio as a 0-100 integer.
	Score        int32 `json:"score"`
	SkippedCount int32 `json:"skipped_count"`

	CredibilitySnapshot float64 `json:"credibility_snapshot"`
	RetentionSnapshot   float64 `json:"retention_snapshot"`
}

// DeriveScore recomputes the 0-100 score from a set of answers. Stored scores
// must match this derivation exactly.
func DeriveScore(answers []AttemptAnswer) int32 {
	if len(answers) == 0 {
		return 0
	}
	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}
	return int32(math.Round(100 * float64(correct) / float64(len(answers))))
}

// TypedResponse is a free-text answer awaiting an external grading verdict.
type TypedResponse struct {
	ItemID int64  `json:"item_id"`
	Text   string `json:"text"`
}

// GradingVerdict is the external grader's judgement of one typed response.
// Reasoning is human-readable context only; the engine consumes the boolean.
type GradingVerdict struct {
	ItemID    int64  `json:"item_id"`
	Correct   bool   `json:"correct"`
	Reasoning string `json:"reasoning,omitempty"`
}
