package quiz

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionClosed is returned when answers arrive after the session
	// left InProgress (already submitted, timed out, or graded).
	ErrSessionClosed = errors.New("quiz session already closed")
	// ErrAnswerIndexOutOfRange is returned for answer indices outside the
	// quiz's question range.
	ErrAnswerIndexOutOfRange = errors.New("answer index out of range")
)

// Session tracks one test-taking session through the quiz lifecycle.
// The countdown timer runs independently; submission and timeout race
// into the same terminal path, and the state check under the mutex
// guarantees exactly one of them triggers grading.
type Session struct {
	QuizID   uuid.UUID
	UserID   string
	Duration time.Duration

	mu            sync.Mutex
	state         State
	questionCount int
	answers       []SubmittedAnswer
	startedAt     time.Time
	timeLeft      time.Duration
	timer         *time.Timer
}

func newSession(quizID uuid.UUID, userID string, duration time.Duration, questionCount int) *Session {
	return &Session{
		QuizID:        quizID,
		UserID:        userID,
		Duration:      duration,
		questionCount: questionCount,
		state:         StateReady,
	}
}

// Start transitions Ready -> InProgress and arms the countdown. When the
// countdown fires, onTimeout receives the answers recorded so far;
// onTimeout is never invoked after a successful Submit.
func (s *Session) Start(onTimeout func(*Session, []SubmittedAnswer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return
	}
	s.state = StateInProgress
	s.startedAt = time.Now()
	s.timer = time.AfterFunc(s.Duration, func() {
		s.mu.Lock()
		if s.state != StateInProgress {
			s.mu.Unlock()
			return
		}
		s.state = StateTimedOut
		answers := append([]SubmittedAnswer(nil), s.answers...)
		s.mu.Unlock()
		onTimeout(s, answers)
	})
}

// RecordAnswer stores the answer for one question index while the
// session is in progress.
func (s *Session) RecordAnswer(index int, ans SubmittedAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return ErrSessionClosed
	}
	if index < 0 || (s.questionCount > 0 && index >= s.questionCount) {
		return ErrAnswerIndexOutOfRange
	}
	for len(s.answers) <= index {
		s.answers = append(s.answers, SubmittedAnswer{})
	}
	s.answers[index] = ans
	return nil
}

// Submit transitions InProgress -> Submitted, stops the countdown, and
// returns the final answer set and remaining time. Fails with
// ErrSessionClosed if the timeout fired first. A session already in
// Submitted accepts a re-submission with the retained answers, so a
// grading attempt that failed downstream can be retried.
func (s *Session) Submit(answers []SubmittedAnswer) ([]SubmittedAnswer, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateInProgress:
		s.state = StateSubmitted
		if s.timer != nil {
			s.timer.Stop()
		}
		if answers != nil {
			s.answers = answers
		}
		s.timeLeft = s.Duration - time.Since(s.startedAt)
		if s.timeLeft < 0 {
			s.timeLeft = 0
		}
	case StateSubmitted:
		// Retry after a failed grading pass; the original answers and
		// remaining time stand.
	default:
		return nil, 0, ErrSessionClosed
	}

	final := append([]SubmittedAnswer(nil), s.answers...)
	return final, s.timeLeft, nil
}

// MarkGraded records the terminal state after the evaluator ran.
func (s *Session) MarkGraded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateGraded
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SessionManager is an explicit per-service registry of active sessions,
// keyed by quiz ID. One session per quiz.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[uuid.UUID]*Session)}
}

// Create registers a new Ready session for a quiz.
func (m *SessionManager) Create(quizID uuid.UUID, userID string, duration time.Duration, questionCount int) *Session {
	sess := newSession(quizID, userID, duration, questionCount)
	m.mu.Lock()
	m.sessions[quizID] = sess
	m.mu.Unlock()
	return sess
}

// Get returns the session for a quiz.
func (m *SessionManager) Get(quizID uuid.UUID) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[quizID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Remove drops a session from the registry once graded.
func (m *SessionManager) Remove(quizID uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, quizID)
	m.mu.Unlock()
}
