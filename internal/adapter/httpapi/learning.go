package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eslsoft/leitbox/internal/entity"
)

// StudyQueueResponse is the ordered queue for one study session.
type StudyQueueResponse struct {
	LearnerID int64              `json:"learner_id"`
	ListID    int64              `json:"list_id"`
	Items     []entity.VocabItem `json:"items"`
}

// GetStudyQueue composes the learner's next study queue.
// GET /api/v1/learners/:learner_id/lists/:list_id/queue
func (s *Service) GetStudyQueue(c echo.Context) error {
	learnerID, listID, err := pathIDs(c)
	if err != nil {
		return s.writeError(c, err)
	}
	classID := queryInt64(c, "class_id", 0)
	limit := int(queryInt64(c, "limit", 0))

	items, err := s.queue.ComposeStudyQueue(c.Request().Context(), learnerID, listID, classID, limit)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, StudyQueueResponse{
		LearnerID: learnerID,
		ListID:    listID,
		Items:     items,
	})
}

// GetTest composes a fresh multiple-choice test.
// GET /api/v1/learners/:learner_id/lists/:list_id/test
func (s *Service) GetTest(c echo.Context) error {
	learnerID, listID, err := pathIDs(c)
	if err != nil {
		return s.writeError(c, err)
	}
	classID := queryInt64(c, "class_id", 0)
	limit := int(queryInt64(c, "limit", 0))

	test, err := s.tests.ComposeTest(c.Request().Context(), learnerID, listID, classID, limit)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, test)
}

// GetPacingReport reports the pacing signals currently in force.
// GET /api/v1/learners/:learner_id/lists/:list_id/pacing
func (s *Service) GetPacingReport(c echo.Context) error {
	learnerID, listID, err := pathIDs(c)
	if err != nil {
		return s.writeError(c, err)
	}
	classID := queryInt64(c, "class_id", 0)

	report, err := s.queue.PacingReport(c.Request().Context(), learnerID, listID, classID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func pathIDs(c echo.Context) (learnerID, listID int64, err error) {
	learnerID, err = strconv.ParseInt(c.Param("learner_id"), 10, 64)
	if err != nil {
		return 0, 0, entity.ErrInvalidLearnerID
	}
	listID, err = strconv.ParseInt(c.Param("list_id"), 10, 64)
	if err != nil {
		return 0, 0, entity.ErrInvalidListID
	}
	return learnerID, listID, nil
}

func queryInt64(c echo.Context, name string, fallback int64) int64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
