package question

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// semanticVerifier is the slice of the LLM client the validator needs.
type semanticVerifier interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// qualityClassifier scores raw question text as acceptable (1) or not (0).
type qualityClassifier interface {
	Classify(ctx context.Context, text string) (int, error)
}

// Validator combines the semantic verification and quality classifier
// verdicts into one accept/reject decision per candidate.
type Validator struct {
	verifier   semanticVerifier
	classifier qualityClassifier
	logger     zerolog.Logger
}

func NewValidator(verifier semanticVerifier, classifier qualityClassifier, logger zerolog.Logger) *Validator {
	return &Validator{
		verifier:   verifier,
		classifier: classifier,
		logger:     logger.With().Str("component", "question_validator").Logger(),
	}
}

// Validate runs both quality gates and returns the combined verdict.
// The two sub-calls run concurrently and both are always issued, even
// when one has already failed, so the rationale is available for
// telemetry. A failed client call is fail-closed for that gate.
func (v *Validator) Validate(ctx context.Context, cand Candidate, difficulty, topic string) Verdict {
	type semanticResult struct {
		pass      bool
		rationale string
	}

	semanticCh := make(chan semanticResult, 1)
	scoreCh := make(chan int, 1)

	go func() {
		resp, err := v.verifier.Complete(ctx, VerificationPrompt(cand, difficulty, topic))
		if err != nil {
			v.logger.Warn().Err(err).Msg("semantic verification call failed")
			semanticCh <- semanticResult{pass: false, rationale: "verification call failed"}
			return
		}
		pass, rationale := parseVerdict(resp)
		semanticCh <- semanticResult{pass: pass, rationale: rationale}
	}()

	go func() {
		score, err := v.classifier.Classify(ctx, cand.Stem)
		if err != nil {
			v.logger.Warn().Err(err).Msg("classifier call failed")
			scoreCh <- 0
			return
		}
		scoreCh <- score
	}()

	semantic := <-semanticCh
	score := <-scoreCh

	verdict := Verdict{
		SemanticPass:      semantic.pass,
		SemanticRationale: semantic.rationale,
		ClassifierScore:   score,
	}

	v.logger.Debug().
		Bool("semantic_pass", verdict.SemanticPass).
		Int("classifier_score", verdict.ClassifierScore).
		Str("rationale", verdict.SemanticRationale).
		Msg("candidate validated")

	return verdict
}

// parseVerdict extracts the pass/fail token from the verifier's
// free-text response. Absence of a recognizable token is a fail.
func parseVerdict(resp string) (pass bool, rationale string) {
	trimmed := strings.TrimSpace(resp)
	token := trimmed
	rest := ""
	if i := strings.IndexAny(trimmed, " \t\n.:,"); i >= 0 {
		token = trimmed[:i]
		rest = strings.TrimSpace(strings.TrimLeft(trimmed[i:], " \t\n.:,"))
	}

	switch strings.ToLower(token) {
	case "pass":
		return true, rest
	case "fail":
		return false, rest
	default:
		return false, trimmed
	}
}
