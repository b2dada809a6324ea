package question

import (
	"fmt"
	"strings"
)

// GenerationPrompt builds the free-text prompt sent to the generator for
// one question slot. The attempt number is folded in so retried slots do
// not replay a byte-identical prompt against a non-deterministic model.
func GenerationPrompt(req Request, attempt int) string {
	var sb strings.Builder

	sb.WriteString("Create exactly one quiz question matching these conditions:\n")
	sb.WriteString(fmt.Sprintf("- Topic: %s\n", req.Topic))
	if req.Category != "" {
		sb.WriteString(fmt.Sprintf("- Category: %s\n", req.Category))
	}
	sb.WriteString(fmt.Sprintf("- Difficulty: %s\n", req.Difficulty))
	if req.Format == FormatObjective {
		sb.WriteString("- Type: multiple choice with exactly 4 options\n")
	} else {
		sb.WriteString("- Type: free-text (no options)\n")
	}
	if attempt > 1 {
		sb.WriteString(fmt.Sprintf("- Variation seed: %d (produce a different question than before)\n", attempt))
	}
	sb.WriteString("\nThe question must be clear, specific, and easy for a learner to understand.\n")
	sb.WriteString("Do not give away the answer in the question text.\n\n")

	if req.Format == FormatObjective {
		sb.WriteString("Respond in exactly this format:\n\n")
		sb.WriteString("Question:\n(question text)\n\n")
		sb.WriteString("Options:\n1. ...\n2. ...\n3. ...\n4. ...\n\n")
		sb.WriteString("Answer: (option number)\n")
	} else {
		sb.WriteString("Respond in exactly this format:\n\n")
		sb.WriteString("Question:\n(question text)\n\n")
		sb.WriteString("Answer: (reference answer)\n")
	}

	return sb.String()
}

// VerificationPrompt builds the semantic-validation prompt for a parsed
// candidate. The response must open with a "pass" or "fail" token; the
// remainder is free-text rationale.
func VerificationPrompt(cand Candidate, difficulty, topic string) string {
	var sb strings.Builder

	sb.WriteString("Evaluate the following quiz question:\n\n")
	sb.WriteString(fmt.Sprintf("Topic: %s\n", topic))
	sb.WriteString(fmt.Sprintf("Difficulty: %s\n\n", difficulty))
	sb.WriteString(fmt.Sprintf("Question: %s\n", cand.Stem))
	if cand.Objective {
		sb.WriteString("\nOptions:\n")
		for i, opt := range cand.Options {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, opt))
		}
	}
	sb.WriteString(fmt.Sprintf("\nExpected answer: %s\n\n", cand.Answer))

	sb.WriteString("Check that:\n")
	sb.WriteString("1. The question is relevant to the topic\n")
	sb.WriteString("2. The question matches the stated difficulty\n")
	sb.WriteString("3. The expected answer is actually correct\n")
	sb.WriteString("4. The question is clear and unambiguous\n")
	if cand.Objective {
		sb.WriteString("5. Incorrect options are plausible but clearly wrong\n")
	}
	sb.WriteString("\nRespond with exactly \"pass\" or \"fail\" on the first line, ")
	sb.WriteString("followed by a brief rationale.\n")

	return sb.String()
}
