package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/eslsoft/leitbox/internal/entity"
)

const (
	testLearner int64 = 42
	testList    int64 = 7
	testClass   int64 = 3
)

func seedCatalog(store *fakeStore, count int) []entity.VocabItem {
	specs := make([]entity.VocabItem, 0, count)
	for i := 1; i <= count; i++ {
		specs = append(specs, entity.VocabItem{
			ID:   int64(i),
			Term: "term",
			Definitions: map[entity.Language]string{
				entity.LanguageEnglish: "definition",
			},
		})
	}
	store.catalog[testList] = itemsWithIDs(testList, specs...)
	return store.catalog[testList]
}

func TestComposeStudyQueueOrdersDueNewReview(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 5)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	// Item 1 is due, item 2 is scheduled in the future, items 3-5 are unseen.
	store.mastery[masteryKey{testLearner, 1}] = entity.MasteryRecord{
		LearnerID: testLearner, ItemID: 1, Box: 2, NextReviewAt: now.Add(-time.Minute),
	}
	store.mastery[masteryKey{testLearner, 2}] = entity.MasteryRecord{
		LearnerID: testLearner, ItemID: 2, Box: 3, NextReviewAt: now.Add(time.Hour),
	}

	uc := NewQueueUsecase(store, 0)
	uc.(*queueUsecase).clock = fixedClock(now)

	queue, err := uc.ComposeStudyQueue(context.Background(), testLearner, testList, testClass, 0)
	if err != nil {
		t.Fatalf("ComposeStudyQueue returned error: %v", err)
	}

	wantOrder := []int64{1, 3, 4, 5, 2}
	if len(queue) != len(wantOrder) {
		t.Fatalf("expected %d items, got %d", len(wantOrder), len(queue))
	}
	for i, want := range wantOrder {
		if queue[i].ID != want {
			t.Errorf("position %d: expected item %d, got %d", i, want, queue[i].ID)
		}
	}
}

func TestComposeStudyQueueThrottlesNewItemsByCredibility(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 30)
	store.assignments[[2]int64{testClass, testList}] = entity.Assignment{
		ClassID: testClass, ListID: testList, BasePace: 20, TestOptionsCount: 4,
	}
	store.profiles[testLearner] = entity.PerformanceProfile{
		LearnerID: testLearner, Credibility: 0.8, Retention: 0.9,
	}

	uc := NewQueueUsecase(store, 0)
	queue, err := uc.ComposeStudyQueue(context.Background(), testLearner, testList, testClass, 0)
	if err != nil {
		t.Fatalf("ComposeStudyQueue returned error: %v", err)
	}
	// All 30 items are unseen, so the queue is exactly the throttled new tranche.
	if len(queue) != 16 {
		t.Fatalf("expected 16 new items at credibility 0.8, got %d", len(queue))
	}
}

func TestComposeStudyQueueNewLimitBoundedByAvailableItems(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 5)
	store.assignments[[2]int64{testClass, testList}] = entity.Assignment{
		ClassID: testClass, ListID: testList, BasePace: 50, TestOptionsCount: 4,
	}

	uc := NewQueueUsecase(store, 0)
	queue, err := uc.ComposeStudyQueue(context.Background(), testLearner, testList, testClass, 0)
	if err != nil {
		t.Fatalf("ComposeStudyQueue returned error: %v", err)
	}
	if len(queue) != 5 {
		t.Fatalf("expected all 5 available items, got %d", len(queue))
	}
}

func TestComposeStudyQueueConfiguredCapBoundsDefault(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 10)
	store.assignments[[2]int64{testClass, testList}] = entity.Assignment{
		ClassID: testClass, ListID: testList, BasePace: 50, TestOptionsCount: 4,
	}

	uc := NewQueueUsecase(store, 3)
	queue, err := uc.ComposeStudyQueue(context.Background(), testLearner, testList, testClass, 0)
	if err != nil {
		t.Fatalf("ComposeStudyQueue returned error: %v", err)
	}
	if len(queue) != 3 {
		t.Fatalf("expected the configured cap of 3 items, got %d", len(queue))
	}

	// An explicit per-request limit still wins over the configured cap.
	queue, err = uc.ComposeStudyQueue(context.Background(), testLearner, testList, testClass, 2)
	if err != nil {
		t.Fatalf("ComposeStudyQueue returned error: %v", err)
	}
	if len(queue) != 2 {
		t.Fatalf("expected 2 items with an explicit limit, got %d", len(queue))
	}
}

func TestComposeStudyQueueRemedialOverride(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 6)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	// Low retention forces remediation regardless of pace or credibility.
	store.profiles[testLearner] = entity.PerformanceProfile{
		LearnerID: testLearner, Credibility: 1.0, Retention: 0.5,
	}
	store.assignments[[2]int64{testClass, testList}] = entity.Assignment{
		ClassID: testClass, ListID: testList, BasePace: 100, TestOptionsCount: 4,
	}
	// Item 1 explicit box 1, items 2-3 advanced, rest unseen.
	store.mastery[masteryKey{testLearner, 1}] = entity.MasteryRecord{
		LearnerID: testLearner, ItemID: 1, Box: 1, NextReviewAt: now.Add(time.Hour),
	}
	store.mastery[masteryKey{testLearner, 2}] = entity.MasteryRecord{
		LearnerID: testLearner, ItemID: 2, Box: 4, NextReviewAt: now.Add(-time.Hour),
	}
	store.mastery[masteryKey{testLearner, 3}] = entity.MasteryRecord{
		LearnerID: testLearner, ItemID: 3, Box: 2, NextReviewAt: now.Add(-time.Hour),
	}

	uc := NewQueueUsecase(store, 0)
	uc.(*queueUsecase).clock = fixedClock(now)

	queue, err := uc.ComposeStudyQueue(context.Background(), testLearner, testList, testClass, 0)
	if err != nil {
		t.Fatalf("ComposeStudyQueue returned error: %v", err)
	}
	wantIDs := map[int64]bool{1: true, 4: true, 5: true, 6: true}
	if len(queue) != len(wantIDs) {
		t.Fatalf("expected %d remedial items, got %d", len(wantIDs), len(queue))
	}
	for _, item := range queue {
		if !wantIDs[item.ID] {
			t.Errorf("item %d should not be in the remedial queue", item.ID)
		}
	}
}

func TestComposeStudyQueueAppliesCap(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 10)
	store.profiles[testLearner] = entity.PerformanceProfile{
		LearnerID: testLearner, Credibility: 1.0, Retention: 0.2,
	}

	uc := NewQueueUsecase(store, 0)
	queue, err := uc.ComposeStudyQueue(context.Background(), testLearner, testList, testClass, 4)
	if err != nil {
		t.Fatalf("ComposeStudyQueue returned error: %v", err)
	}
	if len(queue) != 4 {
		t.Fatalf("expected queue truncated to 4, got %d", len(queue))
	}
}

func TestComposeStudyQueueValidatesIDs(t *testing.T) {
	uc := NewQueueUsecase(newFakeStore(), 0)
	if _, err := uc.ComposeStudyQueue(context.Background(), 0, testList, testClass, 0); err != entity.ErrInvalidLearnerID {
		t.Errorf("expected ErrInvalidLearnerID, got %v", err)
	}
	if _, err := uc.ComposeStudyQueue(context.Background(), testLearner, 0, testClass, 0); err != entity.ErrInvalidListID {
		t.Errorf("expected ErrInvalidListID, got %v", err)
	}
}

func TestComposeStudyQueueAbortsOnCatalogFailure(t *testing.T) {
	store := newFakeStore()
	uc := NewQueueUsecase(store, 0)
	if _, err := uc.ComposeStudyQueue(context.Background(), testLearner, testList, testClass, 0); err != entity.ErrListNotFound {
		t.Errorf("expected ErrListNotFound, got %v", err)
	}
}

func TestPacingReportSignals(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store, 3)
	store.assignments[[2]int64{testClass, testList}] = entity.Assignment{
		ClassID: testClass, ListID: testList, BasePace: 80, TestOptionsCount: 4,
	}
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		store.attempts = append(store.attempts, entity.TestAttempt{
			ID: int64(i + 1), TestID: "t", LearnerID: testLearner, ListID: testList,
			SubmittedAt: base.Add(time.Duration(i) * time.Hour), Score: 50,
		})
	}

	uc := NewQueueUsecase(store, 0)
	report, err := uc.PacingReport(context.Background(), testLearner, testList, testClass)
	if err != nil {
		t.Fatalf("PacingReport returned error: %v", err)
	}
	if report.AdjustedPace != 36 {
		t.Errorf("expected adjusted pace 36, got %d", report.AdjustedPace)
	}
	if report.ReviewTestSize < 30 || report.ReviewTestSize > 60 {
		t.Errorf("review test size out of range: %d", report.ReviewTestSize)
	}
	if report.Remedial {
		t.Error("default profile should not be remedial")
	}
	if report.DailyNewLimit != 80 {
		t.Errorf("expected daily new limit 80 at default credibility, got %d", report.DailyNewLimit)
	}
}
