package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// Domain errors wrap the generic sentinels, so errors.Is matches a caller's
// check at either level.
var (
	ErrCommunityNotFound  = fmt.Errorf("community not found: %w", ErrResourceNotFound)
	ErrSuggestionNotFound = fmt.Errorf("suggestion not found: %w", ErrResourceNotFound)
	ErrInvalidTransition  = fmt.Errorf("suggestion status does not allow this transition: %w", ErrValidationFailed)
)

// Upstream errors
var (
	// ErrAIUnavailable indicates the completion service could not be reached
	// or returned a non-success status.
	ErrAIUnavailable = errors.New("suggestion service unavailable")
)

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a new custom error for validation failures with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewUpstreamError creates a new custom error for completion-service failures
func NewUpstreamError(message string) error {
	return &CustomError{
		Err:     ErrAIUnavailable,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
