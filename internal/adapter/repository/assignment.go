package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eslsoft/leitbox/internal/entity"
)

type assignmentRepository struct {
	db dbtx
}

const getAssignmentSQL = `
SELECT class_id, list_id, base_pace, test_options_count, test_mode, pass_threshold, study_days_per_week
FROM assignments
WHERE class_id = $1 AND list_id = $2`

func (r *assignmentRepository) Get(ctx context.Context, classID, listID int64) (*entity.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var a entity.Assignment
	err := r.db.QueryRow(ctx, getAssignmentSQL, classID, listID).Scan(
		&a.ClassID, &a.ListID, &a.BasePace, &a.TestOptionsCount,
		&a.TestMode, &a.PassThreshold, &a.StudyDaysPerWeek,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &a, nil
}
