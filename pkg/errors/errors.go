package errors

import "fmt"

// Error codes
const (
	CodeAPIError   = "API_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeFetch      = "FETCH_ERROR"
	CodeSession    = "SESSION_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// APIError reports a failed call to the remote attendee API.
type APIError struct {
	*AppError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

// WithCause keeps the *APIError type when chaining.
func (e *APIError) WithCause(cause error) *APIError {
	e.Cause = cause
	return e
}

// ValidationError is raised before any network call and shown to the user as-is.
type ValidationError struct {
	*AppError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// FetchError collapses every profile fetch failure into one user-facing message.
// Cause keeps the underlying failure for logs.
type FetchError struct {
	*AppError
	ShortID string
}

func NewFetchError(message, shortID string, cause error) *FetchError {
	return &FetchError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeFetch,
			StatusCode: 502,
			Context: map[string]any{
				"short_id": shortID,
			},
			Cause: cause,
		},
		ShortID: shortID,
	}
}

type SessionError struct {
	*AppError
	Operation string
	Key       string
}

func NewSessionError(message, operation, key string, cause error) *SessionError {
	return &SessionError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeSession,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}
