package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eslsoft/leitbox/internal/entity"
)

type profileRepository struct {
	db dbtx
}

func (r *profileRepository) Get(ctx context.Context, learnerID int64) (*entity.PerformanceProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var p entity.PerformanceProfile
	err := r.db.QueryRow(ctx,
		`SELECT learner_id, credibility, retention, updated_at FROM performance_profiles WHERE learner_id = $1`,
		learnerID,
	).Scan(&p.LearnerID, &p.Credibility, &p.Retention, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

const upsertProfileSQL = `
INSERT INTO performance_profiles (learner_id, credibility, retention, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (learner_id) DO UPDATE SET
	credibility = EXCLUDED.credibility,
	retention = EXCLUDED.retention,
	updated_at = EXCLUDED.updated_at`

func (r *profileRepository) Upsert(ctx context.Context, profile *entity.PerformanceProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, upsertProfileSQL,
		profile.LearnerID, profile.Credibility, profile.Retention, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
