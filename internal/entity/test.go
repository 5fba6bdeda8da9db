package entity

import "time"

// TestOption is one multiple-choice option; the label is the definition of
// the item the option was drawn from.
type TestOption struct {
	ItemID int64  `json:"item_id"`
	Label  string `json:"label"`
}

// TestQuestion is one generated multiple-choice question.
type TestQuestion struct {
	Item            VocabItem    `json:"item"`
	Options         []TestOption `json:"options"`
	CorrectOptionID int64        `json:"correct_option_id"`
}

// Test is a freshly composed multiple-choice test. The ID keys the eventual
// submission so retries do not double-apply box promotions.
type Test struct {
	ID          string         `json:"id"`
	LearnerID   int64          `json:"learner_id"`
	ListID      int64          `json:"list_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Questions   []TestQuestion `json:"questions"`
}

// PacingReport summarizes the pacing signals currently in force for a
// learner on a list.
type PacingReport struct {
	LearnerID         int64   `json:"learner_id"`
	ListID            int64   `json:"list_id"`
	BasePace          int32   `json:"base_pace"`
	DailyNewLimit     int32   `json:"daily_new_limit"`
	InterventionLevel float64 `json:"intervention_level"`
	AdjustedPace      int32   `json:"adjusted_pace"`
	ReviewTestSize    int32   `json:"review_test_size"`
	Remedial          bool    `json:"remedial"`
	Credibility       float64 `json:"credibility"`
	Retention         float64 `json:"retention"`
}
