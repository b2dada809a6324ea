package question

import (
	"fmt"
	"strings"
)

// ParseError reports generator output that did not match the requested
// shape. It is recoverable and consumes one retry attempt; a candidate
// that fails to parse never reaches the validators.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse question: " + e.Reason
}

// RejectedError reports a candidate that parsed but failed one or both
// quality gates. Recoverable; consumes one retry attempt.
type RejectedError struct {
	Verdict Verdict
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("question rejected: semantic_pass=%t classifier_score=%d",
		e.Verdict.SemanticPass, e.Verdict.ClassifierScore)
}

// Attempt outcome labels, used in attempt logs and metrics.
const (
	OutcomeParseFailure    = "parse_failure"
	OutcomeRejected        = "validation_rejected"
	OutcomeUpstreamFailure = "upstream_failure"
	OutcomeAccepted        = "accepted"
)

// Attempt records the outcome of one producer attempt for diagnostics.
type Attempt struct {
	Number  int
	Outcome string
	Detail  string
}

// ExhaustedError is returned when a slot never produced an accepted
// question within its attempt budget. Fatal to that slot.
type ExhaustedError struct {
	Format     Format
	Difficulty string
	Attempts   []Attempt
}

func (e *ExhaustedError) Error() string {
	outcomes := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		outcomes[i] = a.Outcome
	}
	return fmt.Sprintf("exhausted %d attempts for %s %s slot: %s",
		len(e.Attempts), e.Difficulty, e.Format, strings.Join(outcomes, ", "))
}
