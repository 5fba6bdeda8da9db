package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eslsoft/leitbox/internal/entity"
	"github.com/eslsoft/leitbox/internal/repository"
)

// StudyRatingRequest records a self-rated flashcard review.
type StudyRatingRequest struct {
	Rating string `json:"rating"`
}

// PostStudyRating applies a self-rating to one item's mastery record.
// POST /api/v1/learners/:learner_id/items/:item_id/ratings
func (s *Service) PostStudyRating(c echo.Context) error {
	learnerID, err := strconv.ParseInt(c.Param("learner_id"), 10, 64)
	if err != nil {
		return s.writeError(c, entity.ErrInvalidLearnerID)
	}
	itemID, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil {
		return s.writeError(c, entity.ErrInvalidItemID)
	}

	var req StudyRatingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	rating, err := entity.ParseRating(req.Rating)
	if err != nil {
		return s.writeError(c, err)
	}

	if err := s.outcome.RecordStudyRating(c.Request().Context(), learnerID, itemID, rating); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// TestAttemptRequest submits a completed test. Exactly one of Answers or
// TypedResponses should be set; typed responses go through the external
// grader before mastery is updated.
type TestAttemptRequest struct {
	TestID         string                 `json:"test_id"`
	TotalExpected  int32                  `json:"total_expected"`
	Answers        []entity.AttemptAnswer `json:"answers,omitempty"`
	TypedResponses []entity.TypedResponse `json:"typed_responses,omitempty"`
}

// PostTestAttempt submits graded or typed answers for a composed test.
// POST /api/v1/learners/:learner_id/lists/:list_id/attempts
func (s *Service) PostTestAttempt(c echo.Context) error {
	learnerID, listID, err := pathIDs(c)
	if err != nil {
		return s.writeError(c, err)
	}

	var req TestAttemptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}

	var attempt *entity.TestAttempt
	if len(req.TypedResponses) > 0 {
		attempt, err = s.outcome.SubmitTypedAttempt(c.Request().Context(), learnerID, listID, req.TestID, req.TypedResponses, req.TotalExpected)
	} else {
		attempt, err = s.outcome.SubmitTestAttempt(c.Request().Context(), learnerID, listID, req.TestID, req.Answers, req.TotalExpected)
	}
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, attempt)
}

// ListAttemptsResponse is one page of attempt history.
type ListAttemptsResponse struct {
	Attempts []entity.TestAttempt `json:"attempts"`
	Total    int64                `json:"total"`
}

// ListAttempts pages through a learner's attempt history. The filter and
// order_by query parameters take CEL-style expressions, e.g.
// `score >= 80 && submitted_at >= timestamp("2024-03-01T00:00:00Z")`.
// GET /api/v1/learners/:learner_id/attempts
func (s *Service) ListAttempts(c echo.Context) error {
	learnerID, err := strconv.ParseInt(c.Param("learner_id"), 10, 64)
	if err != nil {
		return s.writeError(c, entity.ErrInvalidLearnerID)
	}

	query := &repository.ListAttemptQuery{
		Pagination: repository.Pagination{
			PageNo:   int32(queryInt64(c, "page_no", 1)),
			PageSize: int32(queryInt64(c, "page_size", 20)),
		},
		FilterOrder: repository.FilterOrder{
			Filter:  c.QueryParam("filter"),
			OrderBy: c.QueryParam("order_by"),
		},
		LearnerID: learnerID,
	}

	attempts, total, err := s.outcome.ListAttempts(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, ListAttemptsResponse{Attempts: attempts, Total: total})
}
