package quiz

import (
	"time"

	"github.com/google/uuid"

	"github.com/stotomi1711/learning-program/internal/question"
)

// State tracks a quiz session through its lifecycle.
type State string

const (
	StateReady      State = "ready"
	StateInProgress State = "in_progress"
	StateTimedOut   State = "timed_out"
	StateSubmitted  State = "submitted"
	StateGraded     State = "graded"
)

// Quiz is an ordered, immutable set of accepted questions with a fixed
// objective/free-text split. Lifetime is one test-taking session.
type Quiz struct {
	ID             uuid.UUID            `json:"id"`
	Topic          string               `json:"topic"`
	Category       string               `json:"category"`
	Difficulty     string               `json:"difficulty"`
	Questions      []question.Candidate `json:"questions"`
	ObjectiveCount int                  `json:"objective_count"`
	FreeTextCount  int                  `json:"free_text_count"`
	CreatedAt      time.Time            `json:"created_at"`
}

// Title is the display name the result record is keyed under.
func (q *Quiz) Title() string {
	return q.Topic + " (" + q.Difficulty + ")"
}

// SubmittedAnswer is one answer record. Objective answers carry the
// selected option index; free-text answers carry raw text. A nil index
// and empty text both mean unanswered.
type SubmittedAnswer struct {
	OptionIndex *int   `json:"option_index,omitempty"`
	Text        string `json:"text,omitempty"`
}

// Answered reports whether anything was submitted for this slot.
func (a SubmittedAnswer) Answered(objective bool) bool {
	if objective {
		return a.OptionIndex != nil
	}
	return a.Text != ""
}

// GradingOutcome is the per-question grading result. Derived once,
// never mutated.
type GradingOutcome struct {
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback,omitempty"`
}

// AnsweredQuestion is one entry of the persisted result record.
type AnsweredQuestion struct {
	Question string   `json:"question"`
	Choices  []string `json:"choices,omitempty"`
	Answer   string   `json:"answer"`
	Correct  bool     `json:"correct"`
	Feedback string   `json:"feedback,omitempty"`
}

// ResultRecord is the persisted summary of a graded quiz. Created once
// at completion; owned by the storage collaborator afterwards.
type ResultRecord struct {
	Score           int                `json:"score"`
	CorrectCount    int                `json:"correct_count"`
	TotalQuestions  int                `json:"total_questions"`
	TimeUsedSeconds int                `json:"time_used_seconds"`
	Answers         []AnsweredQuestion `json:"answers"`
	Keyword         string             `json:"keyword"`
	CreatedAt       time.Time          `json:"created_at"`
}
