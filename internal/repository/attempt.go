package repository

import (
	"context"
	"time"

	"github.com/eslsoft/leitbox/internal/entity"
)

// ListAttemptQuery holds parameters for listing test attempts. The filter and
// order_by expressions are bound into the typed fields by pkg/filterexpr.
type ListAttemptQuery struct {
	Pagination
	FilterOrder

	LearnerID int64

	// Bound from the filter expression.
	ListID         *int64
	ScoreMin       *int32
	ScoreMax       *int32
	SubmittedAfter *time.Time

	// Bound from the order_by expression.
	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}

// AttemptRepository persists immutable test attempts.
type AttemptRepository interface {
	// Insert appends an attempt. Returns entity.ErrDuplicateAttempt when an
	// attempt with the same (learner, test) key already exists.
	Insert(ctx context.Context, attempt *entity.TestAttempt) (*entity.TestAttempt, error)

	// FindByTestID returns the attempt for a learner's test, or (nil, nil)
	// when the test has not been submitted.
	FindByTestID(ctx context.Context, learnerID int64, testID string) (*entity.TestAttempt, error)

	// List returns attempts matching the query plus the total match count.
	List(ctx context.Context, query *ListAttemptQuery) ([]entity.TestAttempt, int64, error)

	// RecentReviewScores returns the learner's most recent review-test scores
	// for a list as 0-1 ratios, newest first, truncated to limit.
	RecentReviewScores(ctx context.Context, learnerID, listID int64, limit int32) ([]float64, error)
}
