package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stotomi1711/learning-program/internal/db/repository"
)

// gradingTimeout bounds background grading after a session times out.
const gradingTimeout = 2 * time.Minute

type quizAssembler interface {
	Assemble(ctx context.Context, req AssemblyRequest) (*Quiz, error)
}

type answerEvaluator interface {
	Grade(ctx context.Context, qz *Quiz, answers []SubmittedAnswer) []GradingOutcome
}

type quizStore interface {
	StoreQuiz(ctx context.Context, qz *Quiz) error
	GetQuiz(ctx context.Context, id uuid.UUID) (*Quiz, error)
	DeleteQuiz(ctx context.Context, id uuid.UUID)
}

type resultStore interface {
	Save(ctx context.Context, params repository.SaveResultParams) error
	ListByUser(ctx context.Context, userID string) ([]repository.StoredResult, error)
}

// GenerateRequest describes one quiz to generate for a user.
type GenerateRequest struct {
	UserID          string
	Topic           string
	Category        string
	Difficulty      string
	TotalCount      int
	ObjectiveTarget int
}

// Service runs the quiz lifecycle: generation, the timed session, and
// the grading that finishes it. Grading is triggered exactly once per
// session, by whichever of submission or timeout wins.
type Service struct {
	assembler quizAssembler
	evaluator answerEvaluator
	store     quizStore
	results   resultStore
	sessions  *SessionManager

	sessionDuration time.Duration
	logger          zerolog.Logger
}

func NewService(
	assembler quizAssembler,
	evaluator answerEvaluator,
	store quizStore,
	results resultStore,
	sessions *SessionManager,
	sessionDuration time.Duration,
	logger zerolog.Logger,
) *Service {
	return &Service{
		assembler:       assembler,
		evaluator:       evaluator,
		store:           store,
		results:         results,
		sessions:        sessions,
		sessionDuration: sessionDuration,
		logger:          logger.With().Str("component", "quiz_service").Logger(),
	}
}

// GenerateQuiz assembles a full quiz, caches it server-side, and starts
// the countdown session. The returned quiz still carries canonical
// answers; the transport layer strips them before responding.
func (s *Service) GenerateQuiz(ctx context.Context, req GenerateRequest) (*Quiz, time.Duration, error) {
	if req.UserID == "" {
		return nil, 0, fmt.Errorf("user id is required")
	}

	qz, err := s.assembler.Assemble(ctx, AssemblyRequest{
		Topic:           req.Topic,
		Category:        req.Category,
		Difficulty:      req.Difficulty,
		TotalCount:      req.TotalCount,
		ObjectiveTarget: req.ObjectiveTarget,
	})
	if err != nil {
		return nil, 0, err
	}

	if err := s.store.StoreQuiz(ctx, qz); err != nil {
		return nil, 0, fmt.Errorf("store quiz: %w", err)
	}

	sess := s.sessions.Create(qz.ID, req.UserID, s.sessionDuration, len(qz.Questions))
	sess.Start(s.onTimeout)
	quizzesGenerated.Inc()

	s.logger.Info().
		Str("quiz_id", qz.ID.String()).
		Str("user_id", req.UserID).
		Dur("session_duration", s.sessionDuration).
		Msg("quiz session started")

	return qz, s.sessionDuration, nil
}

// RecordAnswer stores one in-progress answer on the session so a later
// timeout grades everything the user managed to answer.
func (s *Service) RecordAnswer(quizID uuid.UUID, index int, ans SubmittedAnswer) error {
	sess, err := s.sessions.Get(quizID)
	if err != nil {
		return err
	}
	return sess.RecordAnswer(index, ans)
}

// SubmitAnswers closes the session with the provided answers and grades
// the quiz. Returns ErrSessionNotFound for unknown quizzes and
// ErrSessionClosed when the countdown already expired.
func (s *Service) SubmitAnswers(ctx context.Context, quizID uuid.UUID, answers []SubmittedAnswer) (*ResultRecord, error) {
	sess, err := s.sessions.Get(quizID)
	if err != nil {
		return nil, err
	}

	final, timeLeft, err := sess.Submit(answers)
	if err != nil {
		return nil, err
	}

	record, err := s.grade(ctx, sess, final, timeLeft)
	if err != nil {
		return nil, err
	}
	quizzesGraded.WithLabelValues("submit").Inc()
	return record, nil
}

// onTimeout grades a session whose countdown expired before submission.
// Runs on the timer goroutine with its own deadline.
func (s *Service) onTimeout(sess *Session, answers []SubmittedAnswer) {
	ctx, cancel := context.WithTimeout(context.Background(), gradingTimeout)
	defer cancel()

	s.logger.Info().
		Str("quiz_id", sess.QuizID.String()).
		Str("user_id", sess.UserID).
		Msg("session timed out, grading recorded answers")

	if _, err := s.grade(ctx, sess, answers, 0); err != nil {
		s.logger.Error().Err(err).
			Str("quiz_id", sess.QuizID.String()).
			Msg("failed to grade timed out session")
		return
	}
	quizzesGraded.WithLabelValues("timeout").Inc()
}

// grade is the single grading path shared by submission and timeout.
func (s *Service) grade(ctx context.Context, sess *Session, answers []SubmittedAnswer, timeLeft time.Duration) (*ResultRecord, error) {
	qz, err := s.store.GetQuiz(ctx, sess.QuizID)
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	if qz == nil {
		return nil, fmt.Errorf("quiz %s expired from cache", sess.QuizID)
	}

	outcomes := s.evaluator.Grade(ctx, qz, answers)
	record := Aggregate(qz, answers, outcomes, sess.Duration, timeLeft)

	answersJSON, err := json.Marshal(record.Answers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}

	if err := s.results.Save(ctx, repository.SaveResultParams{
		UserID:          sess.UserID,
		Title:           qz.Title(),
		Score:           record.Score,
		CorrectCount:    record.CorrectCount,
		TotalQuestions:  record.TotalQuestions,
		TimeUsedSeconds: record.TimeUsedSeconds,
		Keyword:         record.Keyword,
		Answers:         answersJSON,
		CreatedAt:       record.CreatedAt,
	}); err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}

	sess.MarkGraded()
	s.sessions.Remove(sess.QuizID)
	s.store.DeleteQuiz(ctx, sess.QuizID)

	s.logger.Info().
		Str("quiz_id", sess.QuizID.String()).
		Str("user_id", sess.UserID).
		Int("score", record.Score).
		Int("correct", record.CorrectCount).
		Msg("quiz graded")

	return &record, nil
}

// ListResults returns the user's persisted result records.
func (s *Service) ListResults(ctx context.Context, userID string) ([]repository.StoredResult, error) {
	return s.results.ListByUser(ctx, userID)
}
