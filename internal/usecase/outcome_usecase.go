package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/eslsoft/leitbox/internal/entity"
	"github.com/eslsoft/leitbox/internal/repository"
)

// GradingService judges free-text responses. An external collaborator; the
// engine consumes only its boolean verdicts.
type GradingService interface {
	GradeTyped(ctx context.Context, responses []entity.TypedResponse) ([]entity.GradingVerdict, error)
}

// OutcomeUsecase applies study ratings and graded test submissions to the
// learner's mastery state, performance profile, and attempt history.
type OutcomeUsecase interface {
	RecordStudyRating(ctx context.Context, learnerID, itemID int64, rating entity.Rating) error
	SubmitTestAttempt(ctx context.Context, learnerID, listID int64, testID string, answers []entity.AttemptAnswer, totalExpected int32) (*entity.TestAttempt, error)
	SubmitTypedAttempt(ctx context.Context, learnerID, listID int64, testID string, responses []entity.TypedResponse, totalExpected int32) (*entity.TestAttempt, error)
	ListAttempts(ctx context.Context, query *repository.ListAttemptQuery) ([]entity.TestAttempt, int64, error)
}

// NewOutcomeUsecase wires the store and grader with default behaviour.
func NewOutcomeUsecase(store repository.Store, grader GradingService) OutcomeUsecase {
	return NewOutcomeUsecaseWithClock(store, grader, time.Now)
}

// NewOutcomeUsecaseWithClock is like NewOutcomeUsecase with an injected
// time source, for simulations and tests.
func NewOutcomeUsecaseWithClock(store repository.Store, grader GradingService, clock func() time.Time) OutcomeUsecase {
	return &outcomeUsecase{
		store:  store,
		grader: grader,
		clock:  clock,
	}
}

type outcomeUsecase struct {
	store  repository.Store
	grader GradingService
	clock  func() time.Time
}

func (u *outcomeUsecase) RecordStudyRating(ctx context.Context, learnerID, itemID int64, rating entity.Rating) error {
	if learnerID <= 0 {
		return entity.ErrInvalidLearnerID
	}
	if itemID <= 0 {
		return entity.ErrInvalidItemID
	}
	if _, err := entity.ParseRating(string(rating)); err != nil {
		return err
	}

	existing, err := u.store.Mastery().Get(ctx, learnerID, itemID)
	if err != nil {
		return err
	}
	state := entity.Unseen()
	if existing != nil {
		state = entity.Recorded(*existing)
	}

	record := state.Materialize(learnerID, itemID)
	if err := record.ApplyRating(rating, u.clock()); err != nil {
		return err
	}
	return u.store.Mastery().Upsert(ctx, &record)
}

func (u *outcomeUsecase) SubmitTestAttempt(ctx context.Context, learnerID, listID int64, testID string, answers []entity.AttemptAnswer, totalExpected int32) (*entity.TestAttempt, error) {
	if learnerID <= 0 {
		return nil, entity.ErrInvalidLearnerID
	}
	if listID <= 0 {
		return nil, entity.ErrInvalidListID
	}
	if strings.TrimSpace(testID) == "" {
		return nil, entity.ErrInvalidTestID
	}
	if len(answers) == 0 {
		return nil, entity.ErrEmptyAnswers
	}

	now := u.clock()
	var submitted *entity.TestAttempt

	// One transaction covers the duplicate check, every mastery write, the
	// attempt insert, and the profile overwrite; a crash mid-way must not
	// leave a partially applied submission behind.
	err := u.store.InTx(ctx, func(tx repository.Store) error {
		if existing, err := tx.Attempts().FindByTestID(ctx, learnerID, testID); err != nil {
			return err
		} else if existing != nil {
			return entity.ErrDuplicateAttempt
		}

		states := make(map[int64]entity.MasteryState, len(answers))
		for _, answer := range answers {
			if answer.ItemID <= 0 {
				return entity.ErrInvalidItemID
			}
			rec, err := tx.Mastery().Get(ctx, learnerID, answer.ItemID)
			if err != nil {
				return err
			}
			if rec != nil {
				states[answer.ItemID] = entity.Recorded(*rec)
			} else {
				states[answer.ItemID] = entity.Unseen()
			}
		}

		credibility, retention := scoreAnswers(answers, states)

		for _, answer := range answers {
			record := states[answer.ItemID].Materialize(learnerID, answer.ItemID)
			record.ApplyVerdict(answer.Correct, now)
			if err := tx.Mastery().Upsert(ctx, &record); err != nil {
				return err
			}
		}

		skipped := totalExpected - int32(len(answers))
		if skipped < 0 {
			skipped = 0
		}
		attempt := &entity.TestAttempt{
			TestID:              testID,
			LearnerID:           learnerID,
			ListID:              listID,
			SubmittedAt:         now,
			Answers:             answers,
			Score:               entity.DeriveScore(answers),
			SkippedCount:        skipped,
			CredibilitySnapshot: credibility,
			RetentionSnapshot:   retention,
		}
		inserted, err := tx.Attempts().Insert(ctx, attempt)
		if err != nil {
			return err
		}
		submitted = inserted

		return tx.Profiles().Upsert(ctx, &entity.PerformanceProfile{
			LearnerID:   learnerID,
			Credibility: credibility,
			Retention:   retention,
			UpdatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}
	return submitted, nil
}

func (u *outcomeUsecase) SubmitTypedAttempt(ctx context.Context, learnerID, listID int64, testID string, responses []entity.TypedResponse, totalExpected int32) (*entity.TestAttempt, error) {
	// Reject malformed submissions before the learner's free text leaves
	// the process; the grader is an external service.
	if learnerID <= 0 {
		return nil, entity.ErrInvalidLearnerID
	}
	if listID <= 0 {
		return nil, entity.ErrInvalidListID
	}
	if strings.TrimSpace(testID) == "" {
		return nil, entity.ErrInvalidTestID
	}
	if len(responses) == 0 {
		return nil, entity.ErrEmptyAnswers
	}

	verdicts, err := u.grader.GradeTyped(ctx, responses)
	if err != nil {
		return nil, err
	}
	byItem := make(map[int64]entity.GradingVerdict, len(verdicts))
	for _, v := range verdicts {
		byItem[v.ItemID] = v
	}

	// A verdict set shorter than the responses is tolerated; items the
	// grader skipped are conservatively marked incorrect.
	answers := make([]entity.AttemptAnswer, 0, len(responses))
	for _, response := range responses {
		verdict, graded := byItem[response.ItemID]
		answers = append(answers, entity.AttemptAnswer{
			ItemID:      response.ItemID,
			Correct:     graded && verdict.Correct,
			GivenAnswer: response.Text,
		})
	}
	return u.SubmitTestAttempt(ctx, learnerID, listID, testID, answers, totalExpected)
}

func (u *outcomeUsecase) ListAttempts(ctx context.Context, query *repository.ListAttemptQuery) ([]entity.TestAttempt, int64, error) {
	if query == nil || query.LearnerID <= 0 {
		return nil, 0, entity.ErrInvalidLearnerID
	}
	return u.store.Attempts().List(ctx, query)
}

// scoreAnswers computes the two profile metrics from a submission.
// Credibility spans every answered item; retention only items whose
// pre-attempt box was already in the mastered range, defaulting to 1.0 when
// no such item was answered.
func scoreAnswers(answers []entity.AttemptAnswer, states map[int64]entity.MasteryState) (credibility, retention float64) {
	correct := 0
	masteredAnswered := 0
	masteredCorrect := 0
	for _, answer := range answers {
		if answer.Correct {
			correct++
		}
		if rec, ok := states[answer.ItemID].Record(); ok && rec.Mastered() {
			masteredAnswered++
			if answer.Correct {
				masteredCorrect++
			}
		}
	}

	credibility = float64(correct) / float64(len(answers))
	retention = 1.0
	if masteredAnswered > 0 {
		retention = float64(masteredCorrect) / float64(masteredAnswered)
	}
	return credibility, retention
}
