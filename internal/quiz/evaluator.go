package quiz

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// answerJudge is the slice of the LLM client used for free-text grading.
type answerJudge interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// fallbackFeedback is used when a judging call fails; the question is
// marked incorrect rather than failing the whole grading pass.
const fallbackFeedback = "Your answer could not be evaluated. It was marked incorrect."

// Evaluator grades submitted answers: objective questions by exact match
// locally, free-text questions through a batched fan-out of judging
// calls.
type Evaluator struct {
	judge  answerJudge
	logger zerolog.Logger
}

func NewEvaluator(judge answerJudge, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		judge:  judge,
		logger: logger.With().Str("component", "answer_evaluator").Logger(),
	}
}

// Grade returns one outcome per question, positionally aligned with the
// quiz. Objective grading is deterministic and local. All free-text
// answers are judged concurrently; the fan-out is bounded by the quiz's
// free-text count. Unanswered questions are incorrect without a call.
func (e *Evaluator) Grade(ctx context.Context, qz *Quiz, answers []SubmittedAnswer) []GradingOutcome {
	outcomes := make([]GradingOutcome, len(qz.Questions))

	var wg sync.WaitGroup
	for i, q := range qz.Questions {
		ans := SubmittedAnswer{}
		if i < len(answers) {
			ans = answers[i]
		}

		if q.Objective {
			outcomes[i] = e.gradeObjective(q.Options, q.Answer, ans)
			continue
		}

		if !ans.Answered(false) {
			outcomes[i] = GradingOutcome{Correct: false, Feedback: "No answer submitted."}
			continue
		}

		wg.Add(1)
		go func(idx int, stem, reference, submitted string) {
			defer wg.Done()
			outcomes[idx] = e.judgeFreeText(ctx, stem, reference, submitted)
		}(i, q.Stem, q.Answer, ans.Text)
	}
	wg.Wait()

	return outcomes
}

func (e *Evaluator) gradeObjective(options []string, canonical string, ans SubmittedAnswer) GradingOutcome {
	feedback := "Correct answer: " + canonical
	if ans.OptionIndex == nil {
		return GradingOutcome{Correct: false, Feedback: feedback}
	}
	idx := *ans.OptionIndex
	if idx < 0 || idx >= len(options) {
		return GradingOutcome{Correct: false, Feedback: feedback}
	}
	return GradingOutcome{Correct: options[idx] == canonical, Feedback: feedback}
}

func (e *Evaluator) judgeFreeText(ctx context.Context, stem, reference, submitted string) GradingOutcome {
	resp, err := e.judge.Complete(ctx, judgmentPrompt(stem, reference, submitted))
	if err != nil {
		e.logger.Warn().Err(err).Msg("judging call failed, marking incorrect")
		return GradingOutcome{Correct: false, Feedback: fallbackFeedback}
	}

	correct, rationale, ok := parseJudgment(resp)
	if !ok {
		e.logger.Warn().Str("response", firstLineOf(resp)).Msg("unrecognized judgment token, marking incorrect")
		return GradingOutcome{Correct: false, Feedback: fallbackFeedback}
	}

	feedback := rationale
	if feedback == "" {
		feedback = "Incorrect."
		if correct {
			feedback = "Correct."
		}
		if reference != "" {
			feedback += " Reference answer: " + reference
		}
	}
	return GradingOutcome{Correct: correct, Feedback: feedback}
}

// judgmentPrompt asks for a leading correct/incorrect token followed by
// a short explanation. An answer containing the core of the expected
// content counts as correct even if imperfect.
func judgmentPrompt(stem, reference, submitted string) string {
	var sb strings.Builder
	sb.WriteString("Evaluate the following answer to a quiz question.\n")
	sb.WriteString("If the answer contains the core content of the expected answer, treat it as correct, even if incomplete.\n")
	sb.WriteString("Respond with \"correct\" or \"incorrect\" as the first word, followed by a brief explanation.\n\n")
	sb.WriteString("Question: " + stem + "\n")
	if reference != "" {
		sb.WriteString("Expected answer: " + reference + "\n")
	}
	sb.WriteString("Submitted answer: " + submitted + "\n")
	return sb.String()
}

// parseJudgment fail-closed extracts the leading correct/incorrect
// token; the remainder, if any, is the judge's explanation.
func parseJudgment(resp string) (correct bool, rationale string, ok bool) {
	trimmed := strings.TrimSpace(resp)
	token := trimmed
	rest := ""
	if i := strings.IndexAny(trimmed, " \t\n.:,-"); i >= 0 {
		token = trimmed[:i]
		rest = strings.TrimSpace(strings.TrimLeft(trimmed[i:], " \t\n.:,-"))
	}

	switch strings.ToLower(strings.Trim(token, "\"'")) {
	case "correct":
		return true, rest, true
	case "incorrect":
		return false, rest, true
	default:
		return false, "", false
	}
}

func firstLineOf(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// Aggregate merges per-question outcomes into the final result record.
func Aggregate(qz *Quiz, answers []SubmittedAnswer, outcomes []GradingOutcome, sessionDuration, timeLeft time.Duration) ResultRecord {
	correctCount := 0
	answered := make([]AnsweredQuestion, len(qz.Questions))

	for i, q := range qz.Questions {
		outcome := outcomes[i]
		if outcome.Correct {
			correctCount++
		}

		ans := SubmittedAnswer{}
		if i < len(answers) {
			ans = answers[i]
		}

		submitted := ans.Text
		if q.Objective {
			submitted = ""
			if ans.OptionIndex != nil && *ans.OptionIndex >= 0 && *ans.OptionIndex < len(q.Options) {
				submitted = q.Options[*ans.OptionIndex]
			}
		}

		answered[i] = AnsweredQuestion{
			Question: q.Stem,
			Choices:  q.Options,
			Answer:   submitted,
			Correct:  outcome.Correct,
			Feedback: outcome.Feedback,
		}
	}

	total := len(qz.Questions)
	score := 0
	if total > 0 {
		score = int(math.Round(100 * float64(correctCount) / float64(total)))
	}

	timeUsed := sessionDuration - timeLeft
	if timeUsed < 0 {
		timeUsed = 0
	}

	return ResultRecord{
		Score:           score,
		CorrectCount:    correctCount,
		TotalQuestions:  total,
		TimeUsedSeconds: int(timeUsed.Seconds()),
		Answers:         answered,
		Keyword:         qz.Topic,
		CreatedAt:       time.Now(),
	}
}
