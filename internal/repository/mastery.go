package repository

import (
	"context"

	"github.com/eslsoft/leitbox/internal/entity"
)

// MasteryRepository persists per-learner, per-item memory records.
type MasteryRepository interface {
	// Get returns the record for one learner and item, or (nil, nil) when
	// the item has never been touched (the "unseen" state is not an error).
	Get(ctx context.Context, learnerID, itemID int64) (*entity.MasteryRecord, error)

	// MapForLearner returns all records a learner holds for items of a list,
	// keyed by item ID.
	MapForLearner(ctx context.Context, learnerID, listID int64) (map[int64]entity.MasteryRecord, error)

	// Upsert creates or replaces a record.
	Upsert(ctx context.Context, record *entity.MasteryRecord) error
}

// ProfileRepository persists per-learner rolling performance metrics.
type ProfileRepository interface {
	// Get returns the learner's profile, or (nil, nil) when none exists yet.
	Get(ctx context.Context, learnerID int64) (*entity.PerformanceProfile, error)

	// Upsert creates or replaces the profile.
	Upsert(ctx context.Context, profile *entity.PerformanceProfile) error
}
