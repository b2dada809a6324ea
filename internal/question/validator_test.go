package question

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type stubVerifier struct {
	calls    atomic.Int32
	response string
	err      error
}

func (s *stubVerifier) Complete(_ context.Context, _ string) (string, error) {
	s.calls.Add(1)
	return s.response, s.err
}

type stubClassifier struct {
	calls atomic.Int32
	score int
	err   error
}

func (s *stubClassifier) Classify(_ context.Context, _ string) (int, error) {
	s.calls.Add(1)
	return s.score, s.err
}

func testCandidate() Candidate {
	return Candidate{
		Stem:      "What is the capital of France?",
		Objective: true,
		Options:   []string{"Berlin", "Paris", "Madrid", "Rome"},
		Answer:    "Paris",
	}
}

func TestValidateBothGatesPass(t *testing.T) {
	verifier := &stubVerifier{response: "pass. clear and answerable"}
	classifier := &stubClassifier{score: 1}
	v := NewValidator(verifier, classifier, zerolog.Nop())

	verdict := v.Validate(context.Background(), testCandidate(), DifficultyBeginner, "geography")

	assert.True(t, verdict.Accepted())
	assert.True(t, verdict.SemanticPass)
	assert.Equal(t, 1, verdict.ClassifierScore)
	assert.Equal(t, "clear and answerable", verdict.SemanticRationale)
}

func TestValidateSemanticFailRejects(t *testing.T) {
	verifier := &stubVerifier{response: "fail: answer does not match any option"}
	classifier := &stubClassifier{score: 1}
	v := NewValidator(verifier, classifier, zerolog.Nop())

	verdict := v.Validate(context.Background(), testCandidate(), DifficultyBeginner, "geography")

	assert.False(t, verdict.Accepted())
	assert.False(t, verdict.SemanticPass)
	assert.Equal(t, "answer does not match any option", verdict.SemanticRationale)
}

func TestValidateClassifierZeroRejects(t *testing.T) {
	verifier := &stubVerifier{response: "pass"}
	classifier := &stubClassifier{score: 0}
	v := NewValidator(verifier, classifier, zerolog.Nop())

	verdict := v.Validate(context.Background(), testCandidate(), DifficultyBeginner, "geography")

	assert.False(t, verdict.Accepted())
	assert.True(t, verdict.SemanticPass)
}

func TestValidateBothGatesAlwaysInvoked(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("upstream down")}
	classifier := &stubClassifier{score: 1}
	v := NewValidator(verifier, classifier, zerolog.Nop())

	verdict := v.Validate(context.Background(), testCandidate(), DifficultyBeginner, "geography")

	assert.False(t, verdict.Accepted())
	assert.Equal(t, int32(1), verifier.calls.Load())
	assert.Equal(t, int32(1), classifier.calls.Load())
	assert.Equal(t, "verification call failed", verdict.SemanticRationale)
	assert.Equal(t, 1, verdict.ClassifierScore)
}

func TestValidateClassifierErrorFailsClosed(t *testing.T) {
	verifier := &stubVerifier{response: "pass"}
	classifier := &stubClassifier{err: errors.New("classifier unreachable")}
	v := NewValidator(verifier, classifier, zerolog.Nop())

	verdict := v.Validate(context.Background(), testCandidate(), DifficultyBeginner, "geography")

	assert.False(t, verdict.Accepted())
	assert.Equal(t, 0, verdict.ClassifierScore)
	assert.Equal(t, int32(1), verifier.calls.Load())
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name      string
		resp      string
		pass      bool
		rationale string
	}{
		{"plain pass", "pass", true, ""},
		{"pass with rationale", "Pass. well formed question", true, "well formed question"},
		{"fail with colon", "FAIL: too vague", false, "too vague"},
		{"unknown token", "maybe acceptable", false, "maybe acceptable"},
		{"empty", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass, rationale := parseVerdict(tt.resp)
			assert.Equal(t, tt.pass, pass)
			assert.Equal(t, tt.rationale, rationale)
		})
	}
}
