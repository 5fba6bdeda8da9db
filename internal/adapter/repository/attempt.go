package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"

	"github.com/eslsoft/leitbox/internal/entity"
	"github.com/eslsoft/leitbox/internal/repository"
	"github.com/eslsoft/leitbox/pkg/filterexpr"
)

type attemptRepository struct {
	db dbtx
}

const insertAttemptSQL = `
INSERT INTO test_attempts (test_id, learner_id, list_id, submitted_at, answers, score, skipped_count, credibility_snapshot, retention_snapshot)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`

func (r *attemptRepository) Insert(ctx context.Context, attempt *entity.TestAttempt) (*entity.TestAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}

	inserted := *attempt
	err = r.db.QueryRow(ctx, insertAttemptSQL,
		attempt.TestID, attempt.LearnerID, attempt.ListID, attempt.SubmittedAt,
		answers, attempt.Score, attempt.SkippedCount,
		attempt.CredibilitySnapshot, attempt.RetentionSnapshot,
	).Scan(&inserted.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateAttempt
		}
		return nil, fmt.Errorf("insert attempt: %w", err)
	}
	return &inserted, nil
}

const findAttemptSQL = `
SELECT id, test_id, learner_id, list_id, submitted_at, answers, score, skipped_count, credibility_snapshot, retention_snapshot
FROM test_attempts
WHERE learner_id = $1 AND test_id = $2`

func (r *attemptRepository) FindByTestID(ctx context.Context, learnerID int64, testID string) (*entity.TestAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	attempt, err := scanAttempt(r.db.QueryRow(ctx, findAttemptSQL, learnerID, testID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find attempt: %w", err)
	}
	return attempt, nil
}

// orderColumns whitelists sortable columns; order keys never reach the SQL
// string unvalidated.
var orderColumns = map[string]string{
	"submitted_at": "submitted_at",
	"score":        "score",
	"id":           "id",
}

func (r *attemptRepository) List(ctx context.Context, query *repository.ListAttemptQuery) ([]entity.TestAttempt, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if query == nil {
		return nil, 0, errors.New("list query required")
	}
	if err := filterexpr.Bind(&query.FilterOrder, query, listAttemptsSchema); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", entity.ErrInvalidQuery, err)
	}

	conds := []string{"learner_id = $1"}
	args := []any{query.LearnerID}
	appendCond := func(expr string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}
	if query.ListID != nil {
		appendCond("list_id = $%d", *query.ListID)
	}
	if query.ScoreMin != nil {
		appendCond("score >= $%d", *query.ScoreMin)
	}
	if query.ScoreMax != nil {
		appendCond("score <= $%d", *query.ScoreMax)
	}
	if query.SubmittedAfter != nil {
		appendCond("submitted_at >= $%d", *query.SubmittedAfter)
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	pageNo := query.PageNo
	if pageNo <= 0 {
		pageNo = 1
	}
	args = append(args, pageSize, (pageNo-1)*pageSize)

	sql := fmt.Sprintf(`
SELECT id, test_id, learner_id, list_id, submitted_at, answers, score, skipped_count, credibility_snapshot, retention_snapshot,
	count(*) OVER () AS total_count
FROM test_attempts
WHERE %s
ORDER BY %s
LIMIT $%d OFFSET $%d`,
		strings.Join(conds, " AND "),
		orderClause(query),
		len(args)-1, len(args),
	)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var (
		attempts []entity.TestAttempt
		total    int64
	)
	for rows.Next() {
		var (
			attempt    entity.TestAttempt
			rawAnswers []byte
		)
		if err := rows.Scan(
			&attempt.ID, &attempt.TestID, &attempt.LearnerID, &attempt.ListID,
			&attempt.SubmittedAt, &rawAnswers, &attempt.Score, &attempt.SkippedCount,
			&attempt.CredibilitySnapshot, &attempt.RetentionSnapshot, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan attempt: %w", err)
		}
		if err := json.Unmarshal(rawAnswers, &attempt.Answers); err != nil {
			return nil, 0, fmt.Errorf("decode answers for attempt %d: %w", attempt.ID, err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, total, nil
}

func orderClause(query *repository.ListAttemptQuery) string {
	segments := make([]string, 0, 2)
	for _, key := range []struct {
		name string
		desc bool
	}{
		{query.PrimaryKey, query.PrimaryDesc},
		{query.SecondaryKey, query.SecondaryDesc},
	} {
		column, ok := orderColumns[key.name]
		if !ok {
			continue
		}
		direction := "ASC"
		if key.desc {
			direction = "DESC"
		}
		segments = append(segments, column+" "+direction)
	}
	if len(segments) == 0 {
		return "submitted_at DESC, id DESC"
	}
	return strings.Join(segments, ", ")
}

const recentScoresSQL = `
SELECT score
FROM test_attempts
WHERE learner_id = $1 AND list_id = $2
ORDER BY submitted_at DESC, id DESC
LIMIT $3`

func (r *attemptRepository) RecentReviewScores(ctx context.Context, learnerID, listID int64, limit int32) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, recentScoresSQL, learnerID, listID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent review scores: %w", err)
	}
	defer rows.Close()

	var scores []int32
	for rows.Next() {
		var score int32
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("scan review score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent review scores: %w", err)
	}
	return lo.Map(scores, func(score int32, _ int) float64 {
		return float64(score) / 100
	}), nil
}

func scanAttempt(row pgx.Row) (*entity.TestAttempt, error) {
	var (
		attempt    entity.TestAttempt
		rawAnswers []byte
	)
	if err := row.Scan(
		&attempt.ID, &attempt.TestID, &attempt.LearnerID, &attempt.ListID,
		&attempt.SubmittedAt, &rawAnswers, &attempt.Score, &attempt.SkippedCount,
		&attempt.CredibilitySnapshot, &attempt.RetentionSnapshot,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawAnswers, &attempt.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return &attempt, nil
}
