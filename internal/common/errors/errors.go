// Package errors provides the standardized error taxonomy shared by the
// registry client and the sync apps.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Upstream registry errors
	ErrCodeRateLimited         ErrorCode = "RATE_LIMITED"
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeProfileNotFound     ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeUnexpectedStatus    ErrorCode = "UNEXPECTED_STATUS"
	ErrCodeInvalidPayload      ErrorCode = "INVALID_PAYLOAD"

	// Input errors
	ErrCodeInvalidKVKNummer    ErrorCode = "INVALID_KVK_NUMMER"
	ErrCodeSubscriptionMissing ErrorCode = "SUBSCRIPTION_MISSING"

	// Local mirror errors
	ErrCodeDatabaseWriteFailed ErrorCode = "DATABASE_WRITE_FAILED"
	ErrCodeDatabaseQueryFailed ErrorCode = "DATABASE_QUERY_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// IsRetryable reports whether err (anywhere in its chain) is a retryable
// StandardError. Unknown errors are treated as non-retryable.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewRateLimitedError creates a retryable error for an exhausted 429 budget.
// The upstream enforces 100 requests/second and 300k/month; a 429 is always
// a backoff-worthy condition, never a fatal one.
func NewRateLimitedError(endpoint string, attempts int) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Upstream rate limit exceeded",
		Details:   fmt.Sprintf("endpoint: %s, attempts: %d", endpoint, attempts),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamUnavailableError creates a retryable error for 5xx responses
// and transport failures.
func NewUpstreamUnavailableError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamUnavailable,
		Message:   "Registry API unavailable",
		Details:   fmt.Sprintf("endpoint: %s, error: %v", endpoint, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileNotFoundError creates a non-retryable error for a 404. Callers
// normally treat this as a skip rather than a failure.
func NewProfileNotFoundError(identifier string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileNotFound,
		Message:   "Record not present in registry",
		Details:   fmt.Sprintf("identifier: %s", identifier),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnexpectedStatusError creates a non-retryable error for status codes
// outside the documented contract (4xx other than 404/429).
func NewUnexpectedStatusError(endpoint string, status int) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnexpectedStatus,
		Message:   "Unexpected registry response status",
		Details:   fmt.Sprintf("endpoint: %s, status: %d", endpoint, status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPayloadError creates a non-retryable error for responses that
// fail schema validation or JSON decoding.
func NewInvalidPayloadError(endpoint string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPayload,
		Message:   "Registry response failed validation",
		Details:   fmt.Sprintf("endpoint: %s, %s", endpoint, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidKVKNummerError creates a non-retryable input error.
func NewInvalidKVKNummerError(raw string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidKVKNummer,
		Message:   "KVK number could not be normalized",
		Details:   fmt.Sprintf("input: %q, error: %v", raw, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubscriptionMissingError creates a non-retryable configuration error
// for Mutatieservice calls without a subscription ID.
func NewSubscriptionMissingError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSubscriptionMissing,
		Message:   "Mutatieservice subscription ID is not configured",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseWriteFailedError creates a retryable mirror write error.
func NewDatabaseWriteFailedError(table string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseWriteFailed,
		Message:   "Mirror write failed",
		Details:   fmt.Sprintf("table: %s, error: %v", table, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseQueryFailedError creates a retryable mirror query error.
func NewDatabaseQueryFailedError(query string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseQueryFailed,
		Message:   "Mirror query failed",
		Details:   fmt.Sprintf("query: %s, error: %v", query, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
