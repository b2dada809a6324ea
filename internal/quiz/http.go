package quiz

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	httperrors "github.com/stotomi1711/learning-program/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for the quiz lifecycle.
type HTTPHandlers struct {
	svc    *Service
	logger zerolog.Logger

	defaultCount          int
	defaultObjectiveRatio float64
}

// NewHTTPHandlers creates HTTP handlers for quiz endpoints.
func NewHTTPHandlers(svc *Service, defaultCount int, defaultObjectiveRatio float64, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		svc:                   svc,
		logger:                logger,
		defaultCount:          defaultCount,
		defaultObjectiveRatio: defaultObjectiveRatio,
	}
}

// GenerateQuizRequest is the POST /v1/quizzes payload.
type GenerateQuizRequest struct {
	UserID         string   `json:"user_id"`
	Topic          string   `json:"topic"`
	Category       string   `json:"category"`
	Difficulty     string   `json:"difficulty"`
	QuestionCount  int      `json:"question_count"`
	ObjectiveRatio *float64 `json:"objective_ratio"`
}

// quizQuestion is the client-facing question view, canonical answers
// stripped.
type quizQuestion struct {
	Index     int      `json:"index"`
	Question  string   `json:"question"`
	Objective bool     `json:"objective"`
	Choices   []string `json:"choices,omitempty"`
}

// SubmitRequest is the POST /v1/quizzes/{id}/submit payload.
type SubmitRequest struct {
	Answers []SubmittedAnswer `json:"answers"`
}

// RecordAnswerRequest is the PUT /v1/quizzes/{id}/answers payload.
type RecordAnswerRequest struct {
	Index  int             `json:"index"`
	Answer SubmittedAnswer `json:"answer"`
}

// GenerateQuiz handles POST /v1/quizzes
func (h *HTTPHandlers) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	var req GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.UserID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "user_id is required", "user_id")
		return
	}
	if req.Topic == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "topic is required", "topic")
		return
	}

	count := req.QuestionCount
	if count <= 0 {
		count = h.defaultCount
	}
	ratio := h.defaultObjectiveRatio
	if req.ObjectiveRatio != nil {
		ratio = *req.ObjectiveRatio
	}
	if ratio < 0 || ratio > 1 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "objective_ratio must be between 0 and 1", "objective_ratio")
		return
	}

	qz, sessionDuration, err := h.svc.GenerateQuiz(r.Context(), GenerateRequest{
		UserID:          req.UserID,
		Topic:           req.Topic,
		Category:        req.Category,
		Difficulty:      req.Difficulty,
		TotalCount:      count,
		ObjectiveTarget: int(math.Round(ratio * float64(count))),
	})
	if err != nil {
		var asmErr *AssemblyError
		if errors.As(err, &asmErr) {
			h.logger.Error().Err(err).Str("topic", req.Topic).Msg("quiz generation failed")
			httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeQuizGenerationFailed, "Could not generate a quiz right now, please try again")
			return
		}
		h.logger.Error().Err(err).Str("topic", req.Topic).Msg("quiz generation error")
		httperrors.RespondInternalError(w, "Failed to generate quiz")
		return
	}

	questions := make([]quizQuestion, len(qz.Questions))
	for i, q := range qz.Questions {
		questions[i] = quizQuestion{
			Index:     i,
			Question:  q.Stem,
			Objective: q.Objective,
			Choices:   q.Options,
		}
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"quiz_id":                  qz.ID.String(),
		"topic":                    qz.Topic,
		"difficulty":               qz.Difficulty,
		"questions":                questions,
		"session_duration_seconds": int(sessionDuration.Seconds()),
	})
}

// RecordAnswer handles PUT /v1/quizzes/{id}/answers
func (h *HTTPHandlers) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	quizID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid quiz id")
		return
	}

	var req RecordAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	if err := h.svc.RecordAnswer(quizID, req.Index, req.Answer); err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz session not found")
		case errors.Is(err, ErrSessionClosed):
			httperrors.RespondConflict(w, httperrors.ErrCodeQuizAlreadyGraded, "Quiz session already closed")
		case errors.Is(err, ErrAnswerIndexOutOfRange):
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "answer index out of range", "index")
		default:
			h.logger.Error().Err(err).Str("quiz_id", quizID.String()).Msg("answer recording failed")
			httperrors.RespondInternalError(w, "Failed to record answer")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"recorded": true,
	})
}

// SubmitAnswers handles POST /v1/quizzes/{id}/submit
func (h *HTTPHandlers) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	quizID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid quiz id")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	record, err := h.svc.SubmitAnswers(r.Context(), quizID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz session not found")
		case errors.Is(err, ErrSessionClosed):
			httperrors.RespondConflict(w, httperrors.ErrCodeQuizAlreadyGraded, "Quiz session already closed")
		default:
			h.logger.Error().Err(err).Str("quiz_id", quizID.String()).Msg("grading failed")
			httperrors.RespondInternalError(w, "Failed to grade quiz")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, record)
}

// ListResults handles GET /v1/results?user_id=
func (h *HTTPHandlers) ListResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "user_id query parameter is required", "user_id")
		return
	}

	results, err := h.svc.ListResults(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("result fetch failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeResultFetchFailed, "Failed to fetch results")
		return
	}

	type resultView struct {
		Title           string          `json:"title"`
		Score           int             `json:"score"`
		CorrectCount    int             `json:"correct_count"`
		TotalQuestions  int             `json:"total_questions"`
		TimeUsedSeconds int             `json:"time_used_seconds"`
		Keyword         string          `json:"keyword"`
		Answers         json.RawMessage `json:"answers"`
		CreatedAt       string          `json:"created_at"`
	}

	views := make([]resultView, len(results))
	for i, res := range results {
		views[i] = resultView{
			Title:           res.Title,
			Score:           res.Score,
			CorrectCount:    res.CorrectCount,
			TotalQuestions:  res.TotalQuestions,
			TimeUsedSeconds: res.TimeUsedSeconds,
			Keyword:         res.Keyword,
			Answers:         json.RawMessage(res.Answers),
			CreatedAt:       res.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": views,
	})
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
