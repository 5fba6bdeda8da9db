package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eslsoft/leitbox/internal/entity"
)

type masteryRepository struct {
	db dbtx
}

const getMasterySQL = `
SELECT learner_id, item_id, box, streak, last_reviewed_at, next_review_at, created_at, updated_at
FROM mastery_records
WHERE learner_id = $1 AND item_id = $2`

func (r *masteryRepository) Get(ctx context.Context, learnerID, itemID int64) (*entity.MasteryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec entity.MasteryRecord
	err := r.db.QueryRow(ctx, getMasterySQL, learnerID, itemID).Scan(
		&rec.LearnerID, &rec.ItemID, &rec.Box, &rec.Streak,
		&rec.LastReviewedAt, &rec.NextReviewAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Unseen is not an error; the caller interprets the absence.
			return nil, nil
		}
		return nil, fmt.Errorf("get mastery record: %w", err)
	}
	return &rec, nil
}

const mapMasterySQL = `
SELECT m.learner_id, m.item_id, m.box, m.streak, m.last_reviewed_at, m.next_review_at, m.created_at, m.updated_at
FROM mastery_records m
JOIN vocab_items v ON v.id = m.item_id
WHERE m.learner_id = $1 AND v.list_id = $2`

func (r *masteryRepository) MapForLearner(ctx context.Context, learnerID, listID int64) (map[int64]entity.MasteryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, mapMasterySQL, learnerID, listID)
	if err != nil {
		return nil, fmt.Errorf("map mastery records: %w", err)
	}
	defer rows.Close()

	records := make(map[int64]entity.MasteryRecord)
	for rows.Next() {
		var rec entity.MasteryRecord
		if err := rows.Scan(
			&rec.LearnerID, &rec.ItemID, &rec.Box, &rec.Streak,
			&rec.LastReviewedAt, &rec.NextReviewAt, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan mastery record: %w", err)
		}
		records[rec.ItemID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("map mastery records: %w", err)
	}
	return records, nil
}

const upsertMasterySQL = `
INSERT INTO mastery_records (learner_id, item_id, box, streak, last_reviewed_at, next_review_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (learner_id, item_id) DO UPDATE SET
	box = EXCLUDED.box,
	streak = EXCLUDED.streak,
	last_reviewed_at = EXCLUDED.last_reviewed_at,
	next_review_at = EXCLUDED.next_review_at,
	updated_at = EXCLUDED.updated_at`

func (r *masteryRepository) Upsert(ctx context.Context, record *entity.MasteryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, upsertMasterySQL,
		record.LearnerID, record.ItemID, record.Box, record.Streak,
		record.LastReviewedAt, record.NextReviewAt, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert mastery record: %w", err)
	}
	return nil
}
