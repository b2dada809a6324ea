package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// quizTTL is generous enough for any session plus grading and review.
const quizTTL = 2 * time.Hour

// StateManager keeps the server-side quiz snapshot (stems, options, and
// canonical answers) in Redis, keyed by quiz ID, so grading never trusts
// client-held data.
type StateManager struct {
	redis  *redis.Client
	logger zerolog.Logger
}

func NewStateManager(client *redis.Client, logger zerolog.Logger) *StateManager {
	return &StateManager{
		redis:  client,
		logger: logger,
	}
}

func quizKey(id uuid.UUID) string {
	return fmt.Sprintf("quiz:questions:%s", id.String())
}

// StoreQuiz caches the full quiz, answers included.
func (s *StateManager) StoreQuiz(ctx context.Context, qz *Quiz) error {
	data, err := json.Marshal(qz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	return s.redis.Set(ctx, quizKey(qz.ID), data, quizTTL).Err()
}

// GetQuiz retrieves a cached quiz, or nil if unknown.
func (s *StateManager) GetQuiz(ctx context.Context, id uuid.UUID) (*Quiz, error) {
	data, err := s.redis.Get(ctx, quizKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	var qz Quiz
	if err := json.Unmarshal(data, &qz); err != nil {
		return nil, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return &qz, nil
}

// DeleteQuiz drops the cached quiz once the session is graded.
func (s *StateManager) DeleteQuiz(ctx context.Context, id uuid.UUID) {
	if err := s.redis.Del(ctx, quizKey(id)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("quiz_id", id.String()).Msg("failed to drop quiz cache")
	}
}
