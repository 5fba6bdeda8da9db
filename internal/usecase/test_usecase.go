package usecase

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/eslsoft/leitbox/internal/entity"
	"github.com/eslsoft/leitbox/internal/repository"
)

// TestUsecase generates multiple-choice tests from the learner's current
// mastery state.
type TestUsecase interface {
	ComposeTest(ctx context.Context, learnerID, listID, classID int64, limit int) (*entity.Test, error)
}

// NewTestUsecase wires the store with default behaviour. questionLimit bounds
// generated tests when the caller passes no limit; zero falls back to
// DefaultTestLimit. Each composition draws its own random source so concurrent
// requests never share one.
func NewTestUsecase(store repository.Store, questionLimit int) TestUsecase {
	return NewTestUsecaseWithClock(store, questionLimit, time.Now)
}

// NewTestUsecaseWithClock is like NewTestUsecase with an injected time
// source, for simulations and tests.
func NewTestUsecaseWithClock(store repository.Store, questionLimit int, clock func() time.Time) TestUsecase {
	if questionLimit <= 0 {
		questionLimit = DefaultTestLimit
	}
	return &testUsecase{
		store: store,
		limit: questionLimit,
		clock: clock,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

type testUsecase struct {
	store   repository.Store
	limit   int
	clock   func() time.Time
	newRand func() *rand.Rand
}

func (u *testUsecase) ComposeTest(ctx context.Context, learnerID, listID, classID int64, limit int) (*entity.Test, error) {
	if learnerID <= 0 {
		return nil, entity.ErrInvalidLearnerID
	}
	if listID <= 0 {
		return nil, entity.ErrInvalidListID
	}
	if limit <= 0 {
		limit = u.limit
	}

	items, err := u.store.Catalog().ListItems(ctx, listID)
	if err != nil {
		return nil, err
	}
	records, err := u.store.Mastery().MapForLearner(ctx, learnerID, listID)
	if err != nil {
		return nil, err
	}
	assignment, err := u.store.Assignments().Get(ctx, classID, listID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		assignment = entity.DefaultAssignment()
	}
	assignment.Normalize()

	now := u.clock()
	rng := u.newRand()

	selected := selectTestItems(items, records, now, limit)
	rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	questions := make([]entity.TestQuestion, 0, len(selected))
	for _, item := range selected {
		questions = append(questions, buildQuestion(item, items, int(assignment.TestOptionsCount), rng))
	}

	return &entity.Test{
		ID:          uuid.NewString(),
		LearnerID:   learnerID,
		ListID:      listID,
		GeneratedAt: now,
		Questions:   questions,
	}, nil
}

// selectTestItems fills the test in strict priority order: struggling box-1
// items already due for review, then glass-ceiling items stuck at box 3,
// then unseen items. Each tranche consumes remaining capacity.
func selectTestItems(items []entity.VocabItem, records map[int64]entity.MasteryRecord, now time.Time, limit int) []entity.VocabItem {
	struggling := lo.Filter(items, func(item entity.VocabItem, _ int) bool {
		rec, ok := records[item.ID]
		return ok && rec.Box == entity.MinBox && rec.NextReviewAt.Before(now)
	})
	ceiling := lo.Filter(items, func(item entity.VocabItem, _ int) bool {
		rec, ok := records[item.ID]
		return ok && rec.Box == entity.GlassCeilingBox
	})
	unseen := lo.Filter(items, func(item entity.VocabItem, _ int) bool {
		_, ok := records[item.ID]
		return !ok
	})

	selected := make([]entity.VocabItem, 0, limit)
	for _, tranche := range [][]entity.VocabItem{struggling, ceiling, unseen} {
		if len(selected) >= limit {
			break
		}
		selected = append(selected, truncate(tranche, limit-len(selected))...)
	}
	return selected
}

func buildQuestion(item entity.VocabItem, catalog []entity.VocabItem, optionsCount int, rng *rand.Rand) entity.TestQuestion {
	others := lo.Filter(catalog, func(candidate entity.VocabItem, _ int) bool {
		return candidate.ID != item.ID
	})

	desired := optionsCount - 1
	if desired < 1 {
		desired = 1
	}
	if desired > len(others) {
		desired = len(others)
	}

	distractors := pickDistractors(item, others, desired, rng)

	options := make([]entity.TestOption, 0, len(distractors)+1)
	options = append(options, entity.TestOption{ItemID: item.ID, Label: item.DefinitionIn(entity.LanguageEnglish)})
	for _, d := range distractors {
		options = append(options, entity.TestOption{ItemID: d.ID, Label: d.DefinitionIn(entity.LanguageEnglish)})
	}
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return entity.TestQuestion{Item: item, Options: options, CorrectOptionID: item.ID}
}

// pickDistractors prefers items sharing the target's part-of-speech tag and
// tops off from the remaining catalog, both in randomized order. The target
// itself is never a candidate.
func pickDistractors(item entity.VocabItem, others []entity.VocabItem, desired int, rng *rand.Rand) []entity.VocabItem {
	samePOS := lo.Filter(others, func(candidate entity.VocabItem, _ int) bool {
		return candidate.SharesPartOfSpeech(item)
	})
	rest := lo.Filter(others, func(candidate entity.VocabItem, _ int) bool {
		return !candidate.SharesPartOfSpeech(item)
	})
	shuffleItems(samePOS, rng)
	shuffleItems(rest, rng)

	distractors := make([]entity.VocabItem, 0, desired)
	for _, pool := range [][]entity.VocabItem{samePOS, rest} {
		for _, candidate := range pool {
			if len(distractors) >= desired {
				return distractors
			}
			distractors = append(distractors, candidate)
		}
	}
	return distractors
}

func shuffleItems(items []entity.VocabItem, rng *rand.Rand) {
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
