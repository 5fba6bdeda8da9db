package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/eslsoft/leitbox/internal/entity"
	"github.com/eslsoft/leitbox/internal/repository"
)

type masteryKey struct {
	learnerID int64
	itemID    int64
}

// fakeStore is an in-memory repository.Store. InTx stages all writes on a
// deep copy and publishes them only when fn succeeds, mirroring the
// commit/rollback contract of the real store.
type fakeStore struct {
	mu sync.RWMutex

	catalog     map[int64][]entity.VocabItem
	assignments map[[2]int64]entity.Assignment
	mastery     map[masteryKey]entity.MasteryRecord
	profiles    map[int64]entity.PerformanceProfile
	attempts    []entity.TestAttempt
	attemptSeq  int64

	catalogErr error
	insertErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		catalog:     make(map[int64][]entity.VocabItem),
		assignments: make(map[[2]int64]entity.Assignment),
		mastery:     make(map[masteryKey]entity.MasteryRecord),
		profiles:    make(map[int64]entity.PerformanceProfile),
	}
}

func (s *fakeStore) Catalog() repository.CatalogRepository       { return &fakeCatalog{s} }
func (s *fakeStore) Assignments() repository.AssignmentRepository { return &fakeAssignments{s} }
func (s *fakeStore) Mastery() repository.MasteryRepository       { return &fakeMastery{s} }
func (s *fakeStore) Profiles() repository.ProfileRepository      { return &fakeProfiles{s} }
func (s *fakeStore) Attempts() repository.AttemptRepository      { return &fakeAttempts{s} }

func (s *fakeStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.snapshotLocked()
	if err := fn(staged); err != nil {
		return err
	}
	s.mastery = staged.mastery
	s.profiles = staged.profiles
	s.attempts = staged.attempts
	s.attemptSeq = staged.attemptSeq
	return nil
}

func (s *fakeStore) snapshotLocked() *fakeStore {
	staged := newFakeStore()
	staged.catalog = s.catalog
	staged.assignments = s.assignments
	staged.catalogErr = s.catalogErr
	staged.insertErr = s.insertErr
	for k, v := range s.mastery {
		staged.mastery[k] = v
	}
	for k, v := range s.profiles {
		staged.profiles[k] = v
	}
	staged.attempts = append([]entity.TestAttempt(nil), s.attempts...)
	staged.attemptSeq = s.attemptSeq
	return staged
}

type fakeCatalog struct{ s *fakeStore }

func (r *fakeCatalog) ListItems(ctx context.Context, listID int64) ([]entity.VocabItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.s.catalogErr != nil {
		return nil, r.s.catalogErr
	}
	items, ok := r.s.catalog[listID]
	if !ok {
		return nil, entity.ErrListNotFound
	}
	return append([]entity.VocabItem(nil), items...), nil
}

type fakeAssignments struct{ s *fakeStore }

func (r *fakeAssignments) Get(ctx context.Context, classID, listID int64) (*entity.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a, ok := r.s.assignments[[2]int64{classID, listID}]; ok {
		copy := a
		return &copy, nil
	}
	return nil, nil
}

type fakeMastery struct{ s *fakeStore }

func (r *fakeMastery) Get(ctx context.Context, learnerID, itemID int64) (*entity.MasteryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rec, ok := r.s.mastery[masteryKey{learnerID, itemID}]; ok {
		copy := rec
		return &copy, nil
	}
	return nil, nil
}

func (r *fakeMastery) MapForLearner(ctx context.Context, learnerID, listID int64) (map[int64]entity.MasteryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	itemIDs := make(map[int64]struct{})
	for _, item := range r.s.catalog[listID] {
		itemIDs[item.ID] = struct{}{}
	}
	result := make(map[int64]entity.MasteryRecord)
	for key, rec := range r.s.mastery {
		if key.learnerID != learnerID {
			continue
		}
		if _, ok := itemIDs[key.itemID]; !ok {
			continue
		}
		result[key.itemID] = rec
	}
	return result, nil
}

func (r *fakeMastery) Upsert(ctx context.Context, record *entity.MasteryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mastery[masteryKey{record.LearnerID, record.ItemID}] = *record
	return nil
}

type fakeProfiles struct{ s *fakeStore }

func (r *fakeProfiles) Get(ctx context.Context, learnerID int64) (*entity.PerformanceProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p, ok := r.s.profiles[learnerID]; ok {
		copy := p
		return &copy, nil
	}
	return nil, nil
}

func (r *fakeProfiles) Upsert(ctx context.Context, profile *entity.PerformanceProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.profiles[profile.LearnerID] = *profile
	return nil
}

type fakeAttempts struct{ s *fakeStore }

func (r *fakeAttempts) Insert(ctx context.Context, attempt *entity.TestAttempt) (*entity.TestAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.s.insertErr != nil {
		return nil, r.s.insertErr
	}
	for _, existing := range r.s.attempts {
		if existing.LearnerID == attempt.LearnerID && existing.TestID == attempt.TestID {
			return nil, entity.ErrDuplicateAttempt
		}
	}
	r.s.attemptSeq++
	copy := *attempt
	copy.ID = r.s.attemptSeq
	copy.Answers = append([]entity.AttemptAnswer(nil), attempt.Answers...)
	r.s.attempts = append(r.s.attempts, copy)
	return &copy, nil
}

func (r *fakeAttempts) FindByTestID(ctx context.Context, learnerID int64, testID string) (*entity.TestAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, attempt := range r.s.attempts {
		if attempt.LearnerID == learnerID && attempt.TestID == testID {
			copy := attempt
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *fakeAttempts) List(ctx context.Context, query *repository.ListAttemptQuery) ([]entity.TestAttempt, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if query == nil {
		return nil, 0, errors.New("list query required")
	}
	var filtered []entity.TestAttempt
	for _, attempt := range r.s.attempts {
		if attempt.LearnerID != query.LearnerID {
			continue
		}
		if query.ListID != nil && attempt.ListID != *query.ListID {
			continue
		}
		if query.ScoreMin != nil && attempt.Score < *query.ScoreMin {
			continue
		}
		if query.ScoreMax != nil && attempt.Score > *query.ScoreMax {
			continue
		}
		if query.SubmittedAfter != nil && attempt.SubmittedAt.Before(*query.SubmittedAfter) {
			continue
		}
		filtered = append(filtered, attempt)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].SubmittedAt.Equal(filtered[j].SubmittedAt) {
			return filtered[i].ID > filtered[j].ID
		}
		return filtered[i].SubmittedAt.After(filtered[j].SubmittedAt)
	})
	return filtered, int64(len(filtered)), nil
}

func (r *fakeAttempts) RecentReviewScores(ctx context.Context, learnerID, listID int64, limit int32) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var matching []entity.TestAttempt
	for _, attempt := range r.s.attempts {
		if attempt.LearnerID == learnerID && attempt.ListID == listID {
			matching = append(matching, attempt)
		}
	}
	sort.Slice(matching, func(i, j int) bool {
		return matching[i].SubmittedAt.After(matching[j].SubmittedAt)
	})
	if int32(len(matching)) > limit {
		matching = matching[:limit]
	}
	scores := make([]float64, 0, len(matching))
	for _, attempt := range matching {
		scores = append(scores, float64(attempt.Score)/100)
	}
	return scores, nil
}

func itemsWithIDs(listID int64, specs ...entity.VocabItem) []entity.VocabItem {
	items := make([]entity.VocabItem, 0, len(specs))
	for _, spec := range specs {
		spec.ListID = listID
		items = append(items, spec)
	}
	return items
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
