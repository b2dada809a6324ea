package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound = "not_found"
	ErrCodeConflict = "conflict"

	// Quiz errors
	ErrCodeQuizGenerationFailed = "quiz_generation_failed"
	ErrCodeQuizNotFound         = "quiz_not_found"
	ErrCodeQuizAlreadyGraded    = "quiz_already_graded"
	ErrCodeGradingFailed        = "grading_failed"
	ErrCodeSubmitFailed         = "submit_failed"
	ErrCodeResultFetchFailed    = "result_fetch_failed"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)
