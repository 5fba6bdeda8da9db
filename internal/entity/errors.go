package entity

import "errors"

// Domain errors for the scheduling engine.
var (
	ErrInvalidLearnerID = errors.New("invalid learner ID")
	ErrInvalidListID    = errors.New("invalid list ID")
	ErrInvalidItemID    = errors.New("invalid item ID")
	ErrInvalidTestID    = errors.New("invalid test ID")
	ErrUnknownRating    = errors.New("unknown study rating")
	ErrEmptyAnswers     = errors.New("test submission has no answers")
	ErrDuplicateAttempt = errors.New("test attempt already submitted")
	ErrAttemptNotFound  = errors.New("test attempt not found")
	ErrListNotFound     = errors.New("vocab list not found")
	ErrInvalidQuery     = errors.New("invalid query expression")
)
