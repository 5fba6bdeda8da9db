package entity

import "time"

// PerformanceProfile holds a learner's rolling performance metrics. Both
// ratios are overwritten, not averaged, after every submitted test.
type PerformanceProfile struct {
	LearnerID int64 `json:"learner_id"`

	// Credibility is the fraction of correct answers over all answered items
	// in the most recent test. Taking a test is an implicit knowledge claim,
	// so unseen items count too.
	Credibility float64 `json:"credibility"`

	// Retention is the fraction of correct answers among items that were
	// already mastered before the test, 1.0 when none were answered.
	Retention float64 `json:"retention"`

	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultProfile is the optimistic starting point for a learner with no
// submitted tests.
func DefaultProfile(learnerID int64) *PerformanceProfile {
	return &PerformanceProfile{LearnerID: learnerID, Credibility: 1.0, Retention: 1.0}
}
