package question

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// textGenerator is the slice of the LLM client the producer needs.
type textGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// candidateValidator decides whether a parsed candidate is acceptable.
type candidateValidator interface {
	Validate(ctx context.Context, cand Candidate, difficulty, topic string) Verdict
}

const (
	defaultMaxAttempts = 3
	defaultBackoff     = time.Second
)

// Producer drives generate -> parse -> validate for a single question
// slot inside a bounded retry loop. Parse failures, rejections, and
// upstream call failures all consume an attempt; only exhaustion of the
// whole budget surfaces to the caller.
type Producer struct {
	generator   textGenerator
	validator   candidateValidator
	maxAttempts int
	backoff     time.Duration
	logger      zerolog.Logger
}

// ProducerOptions tunes the retry budget. Zero values use defaults.
type ProducerOptions struct {
	MaxAttempts int
	Backoff     time.Duration
}

func NewProducer(generator textGenerator, validator candidateValidator, opts ProducerOptions, logger zerolog.Logger) *Producer {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &Producer{
		generator:   generator,
		validator:   validator,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger.With().Str("component", "question_producer").Logger(),
	}
}

// Produce returns one accepted question matching the requested format,
// or an ExhaustedError carrying the attempt log.
func (p *Producer) Produce(ctx context.Context, req Request) (Candidate, error) {
	var accepted Candidate
	attempts := make([]Attempt, 0, p.maxAttempts)

	record := func(outcome, detail string) {
		attempts = append(attempts, Attempt{Number: len(attempts) + 1, Outcome: outcome, Detail: detail})
		attemptOutcomes.WithLabelValues(string(req.Format), outcome).Inc()
	}

	backoff := retry.WithMaxRetries(uint64(p.maxAttempts-1), retry.NewConstant(p.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt := len(attempts) + 1

		raw, err := p.generator.Complete(ctx, GenerationPrompt(req, attempt))
		if err != nil {
			record(OutcomeUpstreamFailure, err.Error())
			p.logger.Warn().Err(err).Int("attempt", attempt).Msg("generation call failed")
			return retry.RetryableError(err)
		}

		cand, err := Parse(raw, req.Format == FormatObjective)
		if err != nil {
			record(OutcomeParseFailure, err.Error())
			p.logger.Warn().Err(err).Int("attempt", attempt).Msg("generator output unparsable")
			return retry.RetryableError(err)
		}

		verdict := p.validator.Validate(ctx, cand, req.Difficulty, req.Topic)
		if !verdict.Accepted() {
			record(OutcomeRejected, verdict.SemanticRationale)
			p.logger.Info().
				Int("attempt", attempt).
				Bool("semantic_pass", verdict.SemanticPass).
				Int("classifier_score", verdict.ClassifierScore).
				Str("rationale", verdict.SemanticRationale).
				Msg("candidate rejected")
			return retry.RetryableError(&RejectedError{Verdict: verdict})
		}

		record(OutcomeAccepted, "")
		accepted = cand
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Candidate{}, fmt.Errorf("produce question: %w", err)
		}
		slotsExhausted.WithLabelValues(string(req.Format)).Inc()
		return Candidate{}, &ExhaustedError{
			Format:     req.Format,
			Difficulty: req.Difficulty,
			Attempts:   attempts,
		}
	}

	return accepted, nil
}
