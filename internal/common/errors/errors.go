// Package errors provides standardized error handling for the onboarding chat widget.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Transport / backend errors
	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	ErrCodeBackendTimeout     ErrorCode = "BACKEND_TIMEOUT"
	ErrCodeMalformedResponse  ErrorCode = "MALFORMED_RESPONSE"

	// User input errors
	ErrCodeEmptySelection ErrorCode = "EMPTY_SELECTION"

	// Infrastructure errors that never reach the transcript
	ErrCodeCacheFailure ErrorCode = "CACHE_FAILURE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e with the key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewBackendUnavailableError creates a retryable transport error.
func NewBackendUnavailableError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendUnavailable,
		Message:   "Backend request failed",
		Details:   fmt.Sprintf("endpoint: %s, error: %s", endpoint, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewBackendStatusError creates a retryable error for a non-2xx response.
func NewBackendStatusError(endpoint string, status int) *StandardError {
	e := &StandardError{
		Code:      ErrCodeBackendUnavailable,
		Message:   "Backend returned an unexpected status",
		Details:   fmt.Sprintf("endpoint: %s, status: %d", endpoint, status),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
	return e.WithMetadata("status", status)
}

// NewBackendTimeoutError creates a retryable timeout error.
func NewBackendTimeoutError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendTimeout,
		Message:   "Backend request timed out",
		Details:   fmt.Sprintf("endpoint: %s", endpoint),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewMalformedResponseError reports a response body that does not match the contract.
func NewMalformedResponseError(endpoint, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedResponse,
		Message:   "Backend response has an unexpected shape",
		Details:   fmt.Sprintf("endpoint: %s, %s", endpoint, details),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptySelectionError is raised when a multi-select question is confirmed with nothing picked.
func NewEmptySelectionError(answerKey string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptySelection,
		Message:   "At least one option must be selected",
		Details:   fmt.Sprintf("answerKey: %s", answerKey),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheFailureError wraps a cache read or write failure.
func NewCacheFailureError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheFailure,
		Message:   "Cache operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Helpers
// ==========================

// AsStandardError extracts a *StandardError from anywhere in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the error code of err, or INTERNAL_ERROR when err is not a StandardError.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return "INTERNAL_ERROR"
}

// IsRetryable reports whether the user may retry the action that produced err.
func IsRetryable(err error) bool {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Retryable
	}
	return true
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "BACKEND"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "MALFORMED"):
		return "RESPONSE"
	case strings.Contains(codeStr, "SELECTION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	default:
		return "OTHER"
	}
}

// UserMessage maps an error to the inline transcript text shown to the visitor.
func UserMessage(err error) string {
	switch CodeOf(err) {
	case ErrCodeBackendTimeout:
		return "Sorry, our service is taking too long to answer. Tap Retry to try again."
	case ErrCodeMalformedResponse:
		return "Sorry, I received an unexpected answer from our service. Tap Retry to try again."
	case ErrCodeEmptySelection:
		return "⚠️ Please select at least one option before continuing."
	default:
		if !IsRetryable(err) {
			return "Sorry, something went wrong on our side. Please try again later."
		}
		return "Sorry, I couldn't reach our service. Tap Retry to try again."
	}
}
