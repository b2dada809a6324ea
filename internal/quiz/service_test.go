package quiz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stotomi1711/learning-program/internal/db/repository"
	"github.com/stotomi1711/learning-program/internal/question"
)

type stubAssembler struct {
	err error
}

func (s *stubAssembler) Assemble(_ context.Context, req AssemblyRequest) (*Quiz, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &Quiz{
		ID:         uuid.New(),
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Questions: []question.Candidate{
			{Stem: "q1", Objective: true, Options: []string{"a", "b", "c", "d"}, Answer: "b"},
			{Stem: "q2", Answer: "reference"},
		},
		ObjectiveCount: 1,
		FreeTextCount:  1,
		CreatedAt:      time.Now(),
	}, nil
}

type stubEvaluator struct{}

func (s *stubEvaluator) Grade(_ context.Context, qz *Quiz, answers []SubmittedAnswer) []GradingOutcome {
	outcomes := make([]GradingOutcome, len(qz.Questions))
	for i, q := range qz.Questions {
		ans := SubmittedAnswer{}
		if i < len(answers) {
			ans = answers[i]
		}
		outcomes[i] = GradingOutcome{Correct: ans.Answered(q.Objective)}
	}
	return outcomes
}

type memoryQuizStore struct {
	mu      sync.Mutex
	quizzes map[uuid.UUID]*Quiz
}

func newMemoryQuizStore() *memoryQuizStore {
	return &memoryQuizStore{quizzes: make(map[uuid.UUID]*Quiz)}
}

func (s *memoryQuizStore) StoreQuiz(_ context.Context, qz *Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[qz.ID] = qz
	return nil
}

func (s *memoryQuizStore) GetQuiz(_ context.Context, id uuid.UUID) (*Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quizzes[id], nil
}

func (s *memoryQuizStore) DeleteQuiz(_ context.Context, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quizzes, id)
}

func (s *memoryQuizStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.quizzes)
}

type recordingResultStore struct {
	mu       sync.Mutex
	saved    []repository.SaveResultParams
	failNext int
	done     chan struct{}
}

func newRecordingResultStore() *recordingResultStore {
	return &recordingResultStore{done: make(chan struct{}, 4)}
}

func (s *recordingResultStore) Save(_ context.Context, params repository.SaveResultParams) error {
	s.mu.Lock()
	if s.failNext > 0 {
		s.failNext--
		s.mu.Unlock()
		return errors.New("storage unavailable")
	}
	s.saved = append(s.saved, params)
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

func (s *recordingResultStore) ListByUser(_ context.Context, userID string) ([]repository.StoredResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.StoredResult
	for _, p := range s.saved {
		if p.UserID == userID {
			out = append(out, repository.StoredResult{
				UserID: p.UserID,
				Title:  p.Title,
				Score:  p.Score,
			})
		}
	}
	return out, nil
}

func (s *recordingResultStore) savedRecords() []repository.SaveResultParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repository.SaveResultParams(nil), s.saved...)
}

func newTestService(sessionDuration time.Duration) (*Service, *memoryQuizStore, *recordingResultStore) {
	store := newMemoryQuizStore()
	results := newRecordingResultStore()
	svc := NewService(
		&stubAssembler{},
		&stubEvaluator{},
		store,
		results,
		NewSessionManager(),
		sessionDuration,
		zerolog.Nop(),
	)
	return svc, store, results
}

func TestGenerateQuizStartsSession(t *testing.T) {
	svc, store, _ := newTestService(time.Minute)

	qz, duration, err := svc.GenerateQuiz(context.Background(), GenerateRequest{
		UserID:          "user-1",
		Topic:           "go basics",
		Difficulty:      question.DifficultyBeginner,
		TotalCount:      2,
		ObjectiveTarget: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, time.Minute, duration)
	assert.Equal(t, 1, store.size())

	sess, err := svc.sessions.Get(qz.ID)
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, sess.State())
}

func TestGenerateQuizRequiresUser(t *testing.T) {
	svc, _, _ := newTestService(time.Minute)

	_, _, err := svc.GenerateQuiz(context.Background(), GenerateRequest{Topic: "go"})
	assert.Error(t, err)
}

func TestSubmitAnswersGradesAndPersists(t *testing.T) {
	svc, store, results := newTestService(time.Minute)

	qz, _, err := svc.GenerateQuiz(context.Background(), GenerateRequest{
		UserID: "user-1", Topic: "go basics", TotalCount: 2, ObjectiveTarget: 1,
	})
	require.NoError(t, err)

	record, err := svc.SubmitAnswers(context.Background(), qz.ID, []SubmittedAnswer{
		{OptionIndex: intPtr(1)},
		{},
	})
	require.NoError(t, err)

	assert.Equal(t, 50, record.Score)
	assert.Equal(t, 1, record.CorrectCount)
	assert.Equal(t, 2, record.TotalQuestions)

	saved := results.savedRecords()
	require.Len(t, saved, 1)
	assert.Equal(t, "user-1", saved[0].UserID)
	assert.Equal(t, qz.Title(), saved[0].Title)
	assert.Equal(t, 50, saved[0].Score)
	assert.NotEmpty(t, saved[0].Answers)

	// Session and cached quiz are gone after grading.
	assert.Equal(t, 0, store.size())
	_, err = svc.sessions.Get(qz.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitAnswersUnknownQuiz(t *testing.T) {
	svc, _, _ := newTestService(time.Minute)

	_, err := svc.SubmitAnswers(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitAfterGradingIsRejected(t *testing.T) {
	svc, _, _ := newTestService(time.Minute)

	qz, _, err := svc.GenerateQuiz(context.Background(), GenerateRequest{
		UserID: "user-1", Topic: "go basics", TotalCount: 2, ObjectiveTarget: 1,
	})
	require.NoError(t, err)

	_, err = svc.SubmitAnswers(context.Background(), qz.ID, nil)
	require.NoError(t, err)

	_, err = svc.SubmitAnswers(context.Background(), qz.ID, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRecordAnswerFlowsIntoTimeoutGrading(t *testing.T) {
	svc, _, results := newTestService(30 * time.Millisecond)

	qz, _, err := svc.GenerateQuiz(context.Background(), GenerateRequest{
		UserID: "user-1", Topic: "go basics", TotalCount: 2, ObjectiveTarget: 1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.RecordAnswer(qz.ID, 0, SubmittedAnswer{OptionIndex: intPtr(1)}))

	select {
	case <-results.done:
	case <-time.After(time.Second):
		t.Fatal("timeout grading never persisted a result")
	}

	// The answer recorded before expiry counts toward the score.
	saved := results.savedRecords()
	require.Len(t, saved, 1)
	assert.Equal(t, 50, saved[0].Score)
}

func TestRecordAnswerUnknownQuiz(t *testing.T) {
	svc, _, _ := newTestService(time.Minute)

	err := svc.RecordAnswer(uuid.New(), 0, SubmittedAnswer{Text: "x"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRecordAnswerRejectsOutOfRangeIndex(t *testing.T) {
	svc, _, _ := newTestService(time.Minute)

	qz, _, err := svc.GenerateQuiz(context.Background(), GenerateRequest{
		UserID: "user-1", Topic: "go basics", TotalCount: 2, ObjectiveTarget: 1,
	})
	require.NoError(t, err)

	err = svc.RecordAnswer(qz.ID, 5, SubmittedAnswer{Text: "x"})
	assert.ErrorIs(t, err, ErrAnswerIndexOutOfRange)
}

func TestSubmitRetriesAfterPersistFailure(t *testing.T) {
	svc, store, results := newTestService(time.Minute)
	results.failNext = 1

	qz, _, err := svc.GenerateQuiz(context.Background(), GenerateRequest{
		UserID: "user-1", Topic: "go basics", TotalCount: 2, ObjectiveTarget: 1,
	})
	require.NoError(t, err)

	answers := []SubmittedAnswer{{OptionIndex: intPtr(1)}, {Text: "an answer"}}
	_, err = svc.SubmitAnswers(context.Background(), qz.ID, answers)
	require.Error(t, err)

	// The session survives the failed persistence, so a retry grades
	// the retained answers and succeeds.
	record, err := svc.SubmitAnswers(context.Background(), qz.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, record.Score)

	saved := results.savedRecords()
	require.Len(t, saved, 1)
	assert.Equal(t, 100, saved[0].Score)
	assert.Equal(t, 0, store.size())
}

func TestTimeoutGradesExactlyOnce(t *testing.T) {
	svc, store, results := newTestService(20 * time.Millisecond)

	qz, _, err := svc.GenerateQuiz(context.Background(), GenerateRequest{
		UserID: "user-1", Topic: "go basics", TotalCount: 2, ObjectiveTarget: 1,
	})
	require.NoError(t, err)

	select {
	case <-results.done:
	case <-time.After(time.Second):
		t.Fatal("timeout grading never persisted a result")
	}

	saved := results.savedRecords()
	require.Len(t, saved, 1)
	assert.Equal(t, 0, saved[0].TimeUsedSeconds)
	assert.Equal(t, 0, saved[0].Score)
	assert.Equal(t, 0, store.size())

	// The racing manual submission finds the session gone.
	_, err = svc.SubmitAnswers(context.Background(), qz.ID, nil)
	assert.Error(t, err)
}
