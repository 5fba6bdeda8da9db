package usecase

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/leitbox/internal/entity"
	"github.com/eslsoft/leitbox/internal/repository"
)

// QueueUsecase composes the daily study queue and reports the pacing signals
// that shaped it.
type QueueUsecase interface {
	ComposeStudyQueue(ctx context.Context, learnerID, listID, classID int64, limit int) ([]entity.VocabItem, error)
	PacingReport(ctx context.Context, learnerID, listID, classID int64) (*entity.PacingReport, error)
}

// NewQueueUsecase wires the store with default behaviour. queueCap bounds
// composed queues when the caller passes no limit; zero falls back to
// DefaultQueueCap.
func NewQueueUsecase(store repository.Store, queueCap int) QueueUsecase {
	return NewQueueUsecaseWithClock(store, queueCap, time.Now)
}

// NewQueueUsecaseWithClock is like NewQueueUsecase with an injected time
// source, for simulations and tests.
func NewQueueUsecaseWithClock(store repository.Store, queueCap int, clock func() time.Time) QueueUsecase {
	if queueCap <= 0 {
		queueCap = DefaultQueueCap
	}
	return &queueUsecase{
		store: store,
		cap:   queueCap,
		clock: clock,
	}
}

type queueUsecase struct {
	store repository.Store
	cap   int
	clock func() time.Time
}

func (u *queueUsecase) ComposeStudyQueue(ctx context.Context, learnerID, listID, classID int64, limit int) ([]entity.VocabItem, error) {
	if learnerID <= 0 {
		return nil, entity.ErrInvalidLearnerID
	}
	if listID <= 0 {
		return nil, entity.ErrInvalidListID
	}
	if limit <= 0 {
		limit = u.cap
	}

	items, err := u.store.Catalog().ListItems(ctx, listID)
	if err != nil {
		return nil, err
	}
	records, err := u.store.Mastery().MapForLearner(ctx, learnerID, listID)
	if err != nil {
		return nil, err
	}
	profile, err := u.loadProfile(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	// Remedial override: a retention drop means previously mastered items are
	// slipping, so the queue narrows to unseen/box-1 items and pace is
	// ignored entirely until retention recovers.
	if profile.Retention < RemedialRetentionThreshold {
		remedial := lo.Filter(items, func(item entity.VocabItem, _ int) bool {
			rec, ok := records[item.ID]
			return !ok || rec.Box == entity.MinBox
		})
		return truncate(remedial, limit), nil
	}

	assignment, err := u.loadAssignment(ctx, classID, listID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	newLimit := DailyNewLimit(assignment.BasePace, profile.Credibility)

	// An absent record is deliberately not treated as due here; only items
	// with an explicit record can be overdue.
	due := lo.Filter(items, func(item entity.VocabItem, _ int) bool {
		rec, ok := records[item.ID]
		return ok && rec.Due(now)
	})
	fresh := lo.Filter(items, func(item entity.VocabItem, _ int) bool {
		_, ok := records[item.ID]
		return !ok
	})
	fresh = truncate(fresh, newLimit)
	review := lo.Filter(items, func(item entity.VocabItem, _ int) bool {
		rec, ok := records[item.ID]
		return ok && !rec.Due(now)
	})

	queue := make([]entity.VocabItem, 0, len(due)+len(fresh)+len(review))
	queue = append(queue, due...)
	queue = append(queue, fresh...)
	queue = append(queue, review...)
	return truncate(queue, limit), nil
}

func (u *queueUsecase) PacingReport(ctx context.Context, learnerID, listID, classID int64) (*entity.PacingReport, error) {
	if learnerID <= 0 {
		return nil, entity.ErrInvalidLearnerID
	}
	if listID <= 0 {
		return nil, entity.ErrInvalidListID
	}

	profile, err := u.loadProfile(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	assignment, err := u.loadAssignment(ctx, classID, listID)
	if err != nil {
		return nil, err
	}
	scores, err := u.store.Attempts().RecentReviewScores(ctx, learnerID, listID, RecentScoreWindow)
	if err != nil {
		return nil, err
	}

	level := InterventionLevel(scores)
	return &entity.PacingReport{
		LearnerID:         learnerID,
		ListID:            listID,
		BasePace:          assignment.BasePace,
		DailyNewLimit:     int32(DailyNewLimit(assignment.BasePace, profile.Credibility)),
		InterventionLevel: level,
		AdjustedPace:      AdjustedPace(assignment.BasePace, level),
		ReviewTestSize:    ReviewTestSize(level),
		Remedial:          profile.Retention < RemedialRetentionThreshold,
		Credibility:       profile.Credibility,
		Retention:         profile.Retention,
	}, nil
}

func (u *queueUsecase) loadProfile(ctx context.Context, learnerID int64) (*entity.PerformanceProfile, error) {
	profile, err := u.store.Profiles().Get(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = entity.DefaultProfile(learnerID)
	}
	return profile, nil
}

func (u *queueUsecase) loadAssignment(ctx context.Context, classID, listID int64) (*entity.Assignment, error) {
	assignment, err := u.store.Assignments().Get(ctx, classID, listID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		assignment = entity.DefaultAssignment()
	}
	assignment.Normalize()
	return assignment, nil
}

func truncate(items []entity.VocabItem, limit int) []entity.VocabItem {
	if limit < 0 {
		limit = 0
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
