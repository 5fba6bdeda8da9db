package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/leitbox/internal/entity"
	"github.com/eslsoft/leitbox/internal/usecase"
)

// Service exposes the scheduling engine over HTTP.
type Service struct {
	queue   usecase.QueueUsecase
	tests   usecase.TestUsecase
	outcome usecase.OutcomeUsecase
	logger  *logrus.Logger
}

func NewService(queue usecase.QueueUsecase, tests usecase.TestUsecase, outcome usecase.OutcomeUsecase, logger *logrus.Logger) *Service {
	return &Service{
		queue:   queue,
		tests:   tests,
		outcome: outcome,
		logger:  logger,
	}
}

// Register mounts all engine routes on the given echo instance.
func (s *Service) Register(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.GET("/learners/:learner_id/lists/:list_id/queue", s.GetStudyQueue)
	api.GET("/learners/:learner_id/lists/:list_id/test", s.GetTest)
	api.GET("/learners/:learner_id/lists/:list_id/pacing", s.GetPacingReport)
	api.POST("/learners/:learner_id/items/:item_id/ratings", s.PostStudyRating)
	api.POST("/learners/:learner_id/lists/:list_id/attempts", s.PostTestAttempt)
	api.GET("/learners/:learner_id/attempts", s.ListAttempts)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain sentinels onto HTTP statuses. Unknown errors are
// logged and reported as opaque 500s.
func (s *Service) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, entity.ErrListNotFound),
		errors.Is(err, entity.ErrAttemptNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrDuplicateAttempt):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrInvalidLearnerID),
		errors.Is(err, entity.ErrInvalidListID),
		errors.Is(err, entity.ErrInvalidItemID),
		errors.Is(err, entity.ErrInvalidTestID),
		errors.Is(err, entity.ErrUnknownRating),
		errors.Is(err, entity.ErrEmptyAnswers),
		errors.Is(err, entity.ErrInvalidQuery):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	s.logger.WithError(err).WithField("path", c.Path()).Error("request failed")
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
