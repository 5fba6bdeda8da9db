package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eslsoft/leitbox/internal/entity"
	"github.com/eslsoft/leitbox/internal/repository"
)

type fakeGrader struct {
	verdicts []entity.GradingVerdict
	err      error
	calls    int
}

func (g *fakeGrader) GradeTyped(ctx context.Context, responses []entity.TypedResponse) ([]entity.GradingVerdict, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.verdicts, nil
}

func newOutcomeUsecase(store *fakeStore, grader GradingService, now time.Time) OutcomeUsecase {
	uc := NewOutcomeUsecase(store, grader)
	uc.(*outcomeUsecase).clock = fixedClock(now)
	return uc
}

func TestRecordStudyRatingCreatesRecordLazily(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc := newOutcomeUsecase(store, &fakeGrader{}, now)

	if err := uc.RecordStudyRating(context.Background(), testLearner, 5, entity.RatingEasy); err != nil {
		t.Fatalf("RecordStudyRating returned error: %v", err)
	}
	rec, ok := store.mastery[masteryKey{testLearner, 5}]
	if !ok {
		t.Fatal("expected a mastery record to be created")
	}
	if rec.Box != 2 || rec.Streak != 1 {
		t.Errorf("expected (box=2, streak=1) after first easy rating, got (%d, %d)", rec.Box, rec.Streak)
	}
	if !rec.NextReviewAt.Equal(now.Add(30 * time.Minute)) {
		t.Errorf("unexpected next review time %v", rec.NextReviewAt)
	}
}

func TestRecordStudyRatingRejectsUnknownRating(t *testing.T) {
	store := newFakeStore()
	uc := newOutcomeUsecase(store, &fakeGrader{}, time.Now())
	if err := uc.RecordStudyRating(context.Background(), testLearner, 5, entity.Rating("sure")); !errors.Is(err, entity.ErrUnknownRating) {
		t.Errorf("expected ErrUnknownRating, got %v", err)
	}
	if len(store.mastery) != 0 {
		t.Error("no record should be written for a rejected rating")
	}
}

func TestSubmitTestAttemptWritesEverythingOnce(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	// Item 1 mastered beforehand, item 2 at box 2, item 3 unseen.
	store.mastery[masteryKey{testLearner, 1}] = entity.MasteryRecord{
		LearnerID: testLearner, ItemID: 1, Box: 4,
	}
	store.mastery[masteryKey{testLearner, 2}] = entity.MasteryRecord{
		LearnerID: testLearner, ItemID: 2, Box: 2,
	}

	uc := newOutcomeUsecase(store, &fakeGrader{}, now)
	answers := []entity.AttemptAnswer{
		{ItemID: 1, Correct: false, GivenAnswer: "a"},
		{ItemID: 2, Correct: true, GivenAnswer: "b"},
		{ItemID: 3, Correct: true, GivenAnswer: "c"},
	}
	attempt, err := uc.SubmitTestAttempt(context.Background(), testLearner, testList, "test-1", answers, 5)
	if err != nil {
		t.Fatalf("SubmitTestAttempt returned error: %v", err)
	}

	// Graded transitions: incorrect -> 1; correct pre-box 2 -> 4; correct unseen -> 4.
	if got := store.mastery[masteryKey{testLearner, 1}].Box; got != 1 {
		t.Errorf("item 1: expected box 1, got %d", got)
	}
	if got := store.mastery[masteryKey{testLearner, 2}].Box; got != 4 {
		t.Errorf("item 2: expected box 4, got %d", got)
	}
	if got := store.mastery[masteryKey{testLearner, 3}].Box; got != 4 {
		t.Errorf("item 3: expected box 4, got %d", got)
	}
	if len(store.mastery) != 3 {
		t.Errorf("expected exactly 3 mastery records, got %d", len(store.mastery))
	}

	if len(store.attempts) != 1 {
		t.Fatalf("expected exactly one attempt, got %d", len(store.attempts))
	}
	if attempt.Score != entity.DeriveScore(attempt.Answers) {
		t.Errorf("stored score %d does not match derivation %d", attempt.Score, entity.DeriveScore(attempt.Answers))
	}
	if attempt.Score != 67 {
		t.Errorf("expected score 67, got %d", attempt.Score)
	}
	if attempt.SkippedCount != 2 {
		t.Errorf("expected 2 skipped items, got %d", attempt.SkippedCount)
	}

	// Credibility over all answers; retention over the one pre-mastered item.
	if attempt.CredibilitySnapshot < 0.666 || attempt.CredibilitySnapshot > 0.667 {
		t.Errorf("unexpected credibility snapshot %v", attempt.CredibilitySnapshot)
	}
	if attempt.RetentionSnapshot != 0 {
		t.Errorf("expected retention snapshot 0, got %v", attempt.RetentionSnapshot)
	}

	profile := store.profiles[testLearner]
	if profile.Credibility != attempt.CredibilitySnapshot || profile.Retention != attempt.RetentionSnapshot {
		t.Errorf("profile not overwritten with snapshots: %+v", profile)
	}
}

func TestSubmitTestAttemptRetentionDefaultsToOne(t *testing.T) {
	store := newFakeStore()
	uc := newOutcomeUsecase(store, &fakeGrader{}, time.Now())

	answers := []entity.AttemptAnswer{{ItemID: 1, Correct: false}}
	attempt, err := uc.SubmitTestAttempt(context.Background(), testLearner, testList, "test-1", answers, 0)
	if err != nil {
		t.Fatalf("SubmitTestAttempt returned error: %v", err)
	}
	if attempt.RetentionSnapshot != 1.0 {
		t.Errorf("expected retention 1.0 with no mastered answers, got %v", attempt.RetentionSnapshot)
	}
	if attempt.SkippedCount != 0 {
		t.Errorf("expected skipped count clamped to 0, got %d", attempt.SkippedCount)
	}
}

func TestSubmitTestAttemptRejectsEmptyAnswers(t *testing.T) {
	store := newFakeStore()
	uc := newOutcomeUsecase(store, &fakeGrader{}, time.Now())

	_, err := uc.SubmitTestAttempt(context.Background(), testLearner, testList, "test-1", nil, 10)
	if !errors.Is(err, entity.ErrEmptyAnswers) {
		t.Fatalf("expected ErrEmptyAnswers, got %v", err)
	}
	if len(store.attempts) != 0 || len(store.mastery) != 0 || len(store.profiles) != 0 {
		t.Error("rejected submission must not mutate anything")
	}
}

func TestSubmitTestAttemptRejectsDuplicateTestID(t *testing.T) {
	store := newFakeStore()
	uc := newOutcomeUsecase(store, &fakeGrader{}, time.Now())

	answers := []entity.AttemptAnswer{{ItemID: 1, Correct: true}}
	if _, err := uc.SubmitTestAttempt(context.Background(), testLearner, testList, "test-1", answers, 0); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	boxAfterFirst := store.mastery[masteryKey{testLearner, 1}].Box

	_, err := uc.SubmitTestAttempt(context.Background(), testLearner, testList, "test-1", answers, 0)
	if !errors.Is(err, entity.ErrDuplicateAttempt) {
		t.Fatalf("expected ErrDuplicateAttempt, got %v", err)
	}
	if got := store.mastery[masteryKey{testLearner, 1}].Box; got != boxAfterFirst {
		t.Errorf("duplicate submission must not re-apply promotions: box %d -> %d", boxAfterFirst, got)
	}
	if len(store.attempts) != 1 {
		t.Errorf("expected a single attempt, got %d", len(store.attempts))
	}
}

func TestSubmitTestAttemptRollsBackOnInsertFailure(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("attempt insert failed")
	store.mastery[masteryKey{testLearner, 1}] = entity.MasteryRecord{
		LearnerID: testLearner, ItemID: 1, Box: 2,
	}
	uc := newOutcomeUsecase(store, &fakeGrader{}, time.Now())

	answers := []entity.AttemptAnswer{{ItemID: 1, Correct: true}}
	if _, err := uc.SubmitTestAttempt(context.Background(), testLearner, testList, "test-1", answers, 0); err == nil {
		t.Fatal("expected submission failure")
	}
	if got := store.mastery[masteryKey{testLearner, 1}].Box; got != 2 {
		t.Errorf("mastery write must be rolled back, got box %d", got)
	}
	if len(store.profiles) != 0 {
		t.Error("profile must not survive a failed submission")
	}
}

func TestSubmitTypedAttemptMarksMissingVerdictsIncorrect(t *testing.T) {
	store := newFakeStore()
	grader := &fakeGrader{verdicts: []entity.GradingVerdict{
		{ItemID: 1, Correct: true, Reasoning: "exact match"},
	}}
	uc := newOutcomeUsecase(store, grader, time.Now())

	responses := []entity.TypedResponse{
		{ItemID: 1, Text: "to move fast"},
		{ItemID: 2, Text: "???"},
	}
	attempt, err := uc.SubmitTypedAttempt(context.Background(), testLearner, testList, "test-1", responses, 0)
	if err != nil {
		t.Fatalf("SubmitTypedAttempt returned error: %v", err)
	}
	if len(attempt.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(attempt.Answers))
	}
	if !attempt.Answers[0].Correct {
		t.Error("graded-correct item should stay correct")
	}
	if attempt.Answers[1].Correct {
		t.Error("item without a verdict must be conservatively incorrect")
	}
	if attempt.Answers[0].GivenAnswer != "to move fast" {
		t.Errorf("given answer not carried through: %q", attempt.Answers[0].GivenAnswer)
	}
}

func TestSubmitTypedAttemptValidatesBeforeGrading(t *testing.T) {
	store := newFakeStore()
	grader := &fakeGrader{}
	uc := newOutcomeUsecase(store, grader, time.Now())

	responses := []entity.TypedResponse{{ItemID: 1, Text: "secret answer"}}
	cases := []struct {
		name      string
		learnerID int64
		listID    int64
		testID    string
		want      error
	}{
		{"zero learner", 0, testList, "test-1", entity.ErrInvalidLearnerID},
		{"zero list", testLearner, 0, "test-1", entity.ErrInvalidListID},
		{"blank test id", testLearner, testList, "  ", entity.ErrInvalidTestID},
	}
	for _, tc := range cases {
		_, err := uc.SubmitTypedAttempt(context.Background(), tc.learnerID, tc.listID, tc.testID, responses, 0)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if grader.calls != 0 {
		t.Errorf("rejected submissions must not reach the grading service, got %d call(s)", grader.calls)
	}
}

func TestListAttemptsFilters(t *testing.T) {
	store := newFakeStore()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store.attempts = []entity.TestAttempt{
		{ID: 1, TestID: "a", LearnerID: testLearner, ListID: testList, Score: 40, SubmittedAt: base},
		{ID: 2, TestID: "b", LearnerID: testLearner, ListID: testList, Score: 90, SubmittedAt: base.Add(time.Hour)},
		{ID: 3, TestID: "c", LearnerID: 99, ListID: testList, Score: 95, SubmittedAt: base},
	}
	uc := newOutcomeUsecase(store, &fakeGrader{}, time.Now())

	minScore := int32(80)
	attempts, total, err := uc.ListAttempts(context.Background(), &repository.ListAttemptQuery{
		LearnerID: testLearner,
		ScoreMin:  &minScore,
	})
	if err != nil {
		t.Fatalf("ListAttempts returned error: %v", err)
	}
	if total != 1 || len(attempts) != 1 || attempts[0].TestID != "b" {
		t.Fatalf("expected only attempt b, got total=%d attempts=%+v", total, attempts)
	}
}
