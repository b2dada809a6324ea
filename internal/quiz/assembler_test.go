package quiz

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stotomi1711/learning-program/internal/question"
)

type stubProducer struct {
	requests []question.Request
	failOn   func(req question.Request) error
}

func (s *stubProducer) Produce(_ context.Context, req question.Request) (question.Candidate, error) {
	s.requests = append(s.requests, req)
	if s.failOn != nil {
		if err := s.failOn(req); err != nil {
			return question.Candidate{}, err
		}
	}
	if req.Format == question.FormatObjective {
		return question.Candidate{
			Stem:      "objective stem",
			Objective: true,
			Options:   []string{"a", "b", "c", "d"},
			Answer:    "b",
		}, nil
	}
	return question.Candidate{Stem: "free text stem", Answer: "reference"}, nil
}

func testAssemblyRequest() AssemblyRequest {
	return AssemblyRequest{
		Topic:           "go concurrency",
		Category:        "programming",
		Difficulty:      question.DifficultyIntermediate,
		TotalCount:      5,
		ObjectiveTarget: 3,
	}
}

func TestAssembleFillsQuotasObjectiveFirst(t *testing.T) {
	producer := &stubProducer{}
	a := NewAssembler(producer, zerolog.Nop())

	qz, err := a.Assemble(context.Background(), testAssemblyRequest())
	require.NoError(t, err)

	require.Len(t, qz.Questions, 5)
	assert.Equal(t, 3, qz.ObjectiveCount)
	assert.Equal(t, 2, qz.FreeTextCount)
	assert.NotEqual(t, uuid.Nil, qz.ID)

	// One producer call per slot, objective slots requested first.
	require.Len(t, producer.requests, 5)
	for i, req := range producer.requests {
		want := question.FormatFreeText
		if i < 3 {
			want = question.FormatObjective
		}
		assert.Equal(t, want, req.Format)
	}
}

func TestAssembleAllObjective(t *testing.T) {
	producer := &stubProducer{}
	a := NewAssembler(producer, zerolog.Nop())

	req := testAssemblyRequest()
	req.TotalCount = 3
	req.ObjectiveTarget = 3

	qz, err := a.Assemble(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, qz.ObjectiveCount)
	assert.Equal(t, 0, qz.FreeTextCount)
}

func TestAssembleAbortsOnExhaustedSlot(t *testing.T) {
	producer := &stubProducer{
		failOn: func(req question.Request) error {
			if req.Format == question.FormatFreeText {
				return &question.ExhaustedError{Format: req.Format, Difficulty: req.Difficulty}
			}
			return nil
		},
	}
	a := NewAssembler(producer, zerolog.Nop())

	qz, err := a.Assemble(context.Background(), testAssemblyRequest())

	assert.Nil(t, qz)
	var asmErr *AssemblyError
	require.ErrorAs(t, err, &asmErr)
	assert.Equal(t, question.FormatFreeText, asmErr.Format)

	var exhausted *question.ExhaustedError
	assert.ErrorAs(t, err, &exhausted)

	// Objective quota filled before the failing free-text slot.
	require.Len(t, producer.requests, 4)
}

func TestAssembleRejectsBadBounds(t *testing.T) {
	a := NewAssembler(&stubProducer{}, zerolog.Nop())

	req := testAssemblyRequest()
	req.TotalCount = 0
	_, err := a.Assemble(context.Background(), req)
	assert.Error(t, err)

	req = testAssemblyRequest()
	req.ObjectiveTarget = 6
	_, err = a.Assemble(context.Background(), req)
	assert.Error(t, err)
}
