package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stotomi1711/learning-program/internal/question"
)

// slotProducer fills one question slot or fails after exhausting its
// retry budget.
type slotProducer interface {
	Produce(ctx context.Context, req question.Request) (question.Candidate, error)
}

// AssemblyRequest describes the quiz to build.
type AssemblyRequest struct {
	Topic           string
	Category        string
	Difficulty      string
	TotalCount      int
	ObjectiveTarget int
}

// AssemblyError is fatal to the whole quiz: one slot exhausted its
// attempts, so no partial quiz is returned.
type AssemblyError struct {
	Format     question.Format
	Difficulty string
	Err        error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("quiz assembly failed on %s %s slot: %v", e.Difficulty, e.Format, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// Assembler builds quizzes by invoking the producer once per slot,
// objective slots first, until both format quotas are satisfied.
type Assembler struct {
	producer slotProducer
	logger   zerolog.Logger
}

func NewAssembler(producer slotProducer, logger zerolog.Logger) *Assembler {
	return &Assembler{
		producer: producer,
		logger:   logger.With().Str("component", "quiz_assembler").Logger(),
	}
}

// Assemble returns a quiz with exactly req.TotalCount questions split as
// (ObjectiveTarget, TotalCount-ObjectiveTarget). Slots are filled
// strictly sequentially: which format is still needed depends on prior
// outcomes.
func (a *Assembler) Assemble(ctx context.Context, req AssemblyRequest) (*Quiz, error) {
	if req.TotalCount <= 0 {
		return nil, fmt.Errorf("total count must be positive, got %d", req.TotalCount)
	}
	if req.ObjectiveTarget < 0 || req.ObjectiveTarget > req.TotalCount {
		return nil, fmt.Errorf("objective target %d out of range [0,%d]", req.ObjectiveTarget, req.TotalCount)
	}
	freeTextTarget := req.TotalCount - req.ObjectiveTarget

	questions := make([]question.Candidate, 0, req.TotalCount)
	objectiveCount, freeTextCount := 0, 0

	for objectiveCount < req.ObjectiveTarget || freeTextCount < freeTextTarget {
		format := question.FormatFreeText
		if objectiveCount < req.ObjectiveTarget {
			format = question.FormatObjective
		}

		cand, err := a.producer.Produce(ctx, question.Request{
			Topic:      req.Topic,
			Category:   req.Category,
			Difficulty: req.Difficulty,
			Format:     format,
		})
		if err != nil {
			a.logger.Error().Err(err).
				Str("format", string(format)).
				Int("objective_filled", objectiveCount).
				Int("free_text_filled", freeTextCount).
				Msg("slot exhausted, aborting assembly")
			return nil, &AssemblyError{Format: format, Difficulty: req.Difficulty, Err: err}
		}

		questions = append(questions, cand)
		if cand.Objective {
			objectiveCount++
		} else {
			freeTextCount++
		}
	}

	quiz := &Quiz{
		ID:             uuid.New(),
		Topic:          req.Topic,
		Category:       req.Category,
		Difficulty:     req.Difficulty,
		Questions:      questions,
		ObjectiveCount: objectiveCount,
		FreeTextCount:  freeTextCount,
		CreatedAt:      time.Now(),
	}

	a.logger.Info().
		Str("quiz_id", quiz.ID.String()).
		Int("objective", objectiveCount).
		Int("free_text", freeTextCount).
		Msg("quiz assembled")

	return quiz, nil
}
