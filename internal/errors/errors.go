package errors

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeInternal    = "INTERNAL_ERROR"
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeInvalidDemo = "INVALID_DEMO"
	ErrCodeParse       = "PARSE_ERROR"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Fatal   bool   // Fatal errors must not be retried by the job queue
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err (or any error it wraps) is a fatal error,
// i.e. one that will not succeed on retry. Corrupt input files and
// unresolvable player identities fall into this class.
func IsFatal(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Fatal
	}
	return false
}

// UserMessage returns the short, non-technical message suitable for the
// demo's status_message field. Internal detail stays in logs.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "processing failed"
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewInvalidDemoError creates a fatal error for a replay file that failed
// structural validation. A corrupt file will not become valid on retry.
func NewInvalidDemoError(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidDemo,
		Message: reason,
		Status:  422,
		Fatal:   true,
	}
}

// NewMainPlayerError creates a fatal error for an unresolvable main player.
func NewMainPlayerError() *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: "could not identify the main player; check the Steam ID configured in settings",
		Status:  422,
		Fatal:   true,
	}
}

// NewParseError creates a retryable parse error.
func NewParseError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeParse,
		Message: message,
		Status:  500,
		Err:     err,
	}
}
