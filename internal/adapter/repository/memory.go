package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/eslsoft/leitbox/internal/entity"
	"github.com/eslsoft/leitbox/internal/repository"
	"github.com/eslsoft/leitbox/pkg/filterexpr"
)

// MemStore is an in-memory Store. It backs the simulate command and is not
// meant for production serving; writes inside InTx are applied directly
// since the simulation runs single-threaded per learner.
type MemStore struct {
	mu sync.Mutex

	lists       map[int64][]entity.VocabItem
	assignments map[[2]int64]entity.Assignment
	mastery     map[memKey]entity.MasteryRecord
	profiles    map[int64]entity.PerformanceProfile
	attempts    []entity.TestAttempt
	attemptSeq  int64
}

type memKey struct {
	learnerID int64
	itemID    int64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		lists:       make(map[int64][]entity.VocabItem),
		assignments: make(map[[2]int64]entity.Assignment),
		mastery:     make(map[memKey]entity.MasteryRecord),
		profiles:    make(map[int64]entity.PerformanceProfile),
	}
}

// SeedList installs a list's catalog content.
func (m *MemStore) SeedList(listID int64, items []entity.VocabItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[listID] = append([]entity.VocabItem(nil), items...)
}

// SeedAssignment installs a pacing assignment.
func (m *MemStore) SeedAssignment(a entity.Assignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[[2]int64{a.ClassID, a.ListID}] = a
}

func (m *MemStore) Catalog() repository.CatalogRepository        { return (*memCatalog)(m) }
func (m *MemStore) Assignments() repository.AssignmentRepository { return (*memAssignments)(m) }
func (m *MemStore) Mastery() repository.MasteryRepository        { return (*memMastery)(m) }
func (m *MemStore) Profiles() repository.ProfileRepository       { return (*memProfiles)(m) }
func (m *MemStore) Attempts() repository.AttemptRepository       { return (*memAttempts)(m) }

func (m *MemStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(m)
}

type memCatalog MemStore

func (c *memCatalog) ListItems(ctx context.Context, listID int64) ([]entity.VocabItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := c.lists[listID]
	if !ok {
		return nil, entity.ErrListNotFound
	}
	return append([]entity.VocabItem(nil), items...), nil
}

type memAssignments MemStore

func (a *memAssignments) Get(ctx context.Context, classID, listID int64) (*entity.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	assignment, ok := a.assignments[[2]int64{classID, listID}]
	if !ok {
		return nil, nil
	}
	clone := assignment
	return &clone, nil
}

type memMastery MemStore

func (m *memMastery) Get(ctx context.Context, learnerID, itemID int64) (*entity.MasteryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.mastery[memKey{learnerID, itemID}]
	if !ok {
		return nil, nil
	}
	clone := record
	return &clone, nil
}

func (m *memMastery) MapForLearner(ctx context.Context, learnerID, listID int64) (map[int64]entity.MasteryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[int64]entity.MasteryRecord)
	for _, item := range m.lists[listID] {
		if record, ok := m.mastery[memKey{learnerID, item.ID}]; ok {
			result[item.ID] = record
		}
	}
	return result, nil
}

func (m *memMastery) Upsert(ctx context.Context, record *entity.MasteryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mastery[memKey{record.LearnerID, record.ItemID}] = *record
	return nil
}

type memProfiles MemStore

func (p *memProfiles) Get(ctx context.Context, learnerID int64) (*entity.PerformanceProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	profile, ok := p.profiles[learnerID]
	if !ok {
		return nil, nil
	}
	clone := profile
	return &clone, nil
}

func (p *memProfiles) Upsert(ctx context.Context, profile *entity.PerformanceProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles[profile.LearnerID] = *profile
	return nil
}

type memAttempts MemStore

func (a *memAttempts) Insert(ctx context.Context, attempt *entity.TestAttempt) (*entity.TestAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, existing := range a.attempts {
		if existing.LearnerID == attempt.LearnerID && existing.TestID == attempt.TestID {
			return nil, entity.ErrDuplicateAttempt
		}
	}
	a.attemptSeq++
	stored := *attempt
	stored.ID = a.attemptSeq
	a.attempts = append(a.attempts, stored)
	clone := stored
	return &clone, nil
}

func (a *memAttempts) FindByTestID(ctx context.Context, learnerID int64, testID string) (*entity.TestAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, attempt := range a.attempts {
		if attempt.LearnerID == learnerID && attempt.TestID == testID {
			clone := attempt
			return &clone, nil
		}
	}
	return nil, nil
}

func (a *memAttempts) List(ctx context.Context, query *repository.ListAttemptQuery) ([]entity.TestAttempt, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if err := filterexpr.Bind(&query.FilterOrder, query, listAttemptsSchema); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", entity.ErrInvalidQuery, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var matched []entity.TestAttempt
	for _, attempt := range a.attempts {
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
		matched = append(matched, attempt)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if less, decided := compareAttempts(matched[i], matched[j], query.PrimaryKey, query.PrimaryDesc); decided {
			return less
		}
		less, _ := compareAttempts(matched[i], matched[j], query.SecondaryKey, query.SecondaryDesc)
		return less
	})

	total := int64(len(matched))
	offset := int(query.Offset())
	if offset < 0 || offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + int(query.PageSize)
	if end > len(matched) {
		end = len(matched)
	}
	return append([]entity.TestAttempt(nil), matched[offset:end]...), total, nil
}

// compareAttempts orders two attempts on one key. The decided result is
// false when the attempts tie on that key.
func compareAttempts(a, b entity.TestAttempt, key string, desc bool) (less, decided bool) {
	var cmp int
	switch key {
	case "score":
		cmp = int(a.Score) - int(b.Score)
	case "id":
		switch {
		case a.ID < b.ID:
			cmp = -1
		case a.ID > b.ID:
			cmp = 1
		}
	default: // submitted_at
		switch {
		case a.SubmittedAt.Before(b.SubmittedAt):
			cmp = -1
		case a.SubmittedAt.After(b.SubmittedAt):
			cmp = 1
		}
	}
	if cmp == 0 {
		return false, false
	}
	if desc {
		return cmp > 0, true
	}
	return cmp < 0, true
}

func (a *memAttempts) RecentReviewScores(ctx context.Context, learnerID, listID int64, limit int32) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var recent []entity.TestAttempt
	for _, attempt := range a.attempts {
		if attempt.LearnerID == learnerID && attempt.ListID == listID {
			recent = append(recent, attempt)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].SubmittedAt.After(recent[j].SubmittedAt)
	})
	if int32(len(recent)) > limit {
		recent = recent[:limit]
	}
	scores := make([]float64, 0, len(recent))
	for _, attempt := range recent {
		scores = append(scores, float64(attempt.Score)/100)
	}
	return scores, nil
}
