package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// resultStore is the slice of pgxpool.Pool the repository needs.
type resultStore interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SaveResultParams carries one completed result record. Answers is the
// pre-marshaled JSON payload stored as JSONB.
type SaveResultParams struct {
	UserID          string
	Title           string
	Score           int
	CorrectCount    int
	TotalQuestions  int
	TimeUsedSeconds int
	Keyword         string
	Answers         []byte
	CreatedAt       time.Time
}

// StoredResult is one persisted result row.
type StoredResult struct {
	UserID          string
	Title           string
	Score           int
	CorrectCount    int
	TotalQuestions  int
	TimeUsedSeconds int
	Keyword         string
	Answers         []byte
	CreatedAt       time.Time
}

// ResultRepository contains DB helpers for quiz result records.
type ResultRepository struct {
	store resultStore
}

// NewResultRepository constructs a new result repository.
func NewResultRepository(store resultStore) *ResultRepository {
	return &ResultRepository{store: store}
}

// Save persists a result record keyed by (user_id, title). Re-taking the
// same quiz title overwrites the previous record.
func (r *ResultRepository) Save(ctx context.Context, params SaveResultParams) error {
	const query = `
		INSERT INTO quiz_results (user_id, title, score, correct_count, total_questions, time_used_seconds, keyword, answers, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, title) DO UPDATE SET
			score = EXCLUDED.score,
			correct_count = EXCLUDED.correct_count,
			total_questions = EXCLUDED.total_questions,
			time_used_seconds = EXCLUDED.time_used_seconds,
			keyword = EXCLUDED.keyword,
			answers = EXCLUDED.answers,
			created_at = EXCLUDED.created_at`

	_, err := r.store.Exec(ctx, query,
		params.UserID,
		params.Title,
		params.Score,
		params.CorrectCount,
		params.TotalQuestions,
		params.TimeUsedSeconds,
		params.Keyword,
		params.Answers,
		params.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// ListByUser returns all result records for a user, newest first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID string) ([]StoredResult, error) {
	const query = `
		SELECT user_id, title, score, correct_count, total_questions, time_used_seconds, keyword, answers, created_at
		FROM quiz_results
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.store.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []StoredResult
	for rows.Next() {
		var res StoredResult
		if err := rows.Scan(
			&res.UserID,
			&res.Title,
			&res.Score,
			&res.CorrectCount,
			&res.TotalQuestions,
			&res.TimeUsedSeconds,
			&res.Keyword,
			&res.Answers,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
