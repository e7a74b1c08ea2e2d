package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitedIsRetryable(t *testing.T) {
	err := NewRateLimitedError("/v1/basisprofielen/12345678", 5)

	assert.True(t, IsRetryable(err))
	assert.True(t, HasCode(err, ErrCodeRateLimited))
	assert.Contains(t, err.Error(), "RATE_LIMITED")
}

func TestNotFoundIsNotRetryable(t *testing.T) {
	err := NewProfileNotFoundError("12345678")

	assert.False(t, IsRetryable(err))
	assert.True(t, HasCode(err, ErrCodeProfileNotFound))
}

func TestIsRetryableThroughWrapping(t *testing.T) {
	inner := NewUpstreamUnavailableError("/v1/vestigingsprofielen/000000000001", assert.AnError)
	wrapped := fmt.Errorf("fetch vestigingsprofiel: %w", inner)

	assert.True(t, IsRetryable(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeUpstreamUnavailable))
}

func TestUnknownErrorIsNotRetryable(t *testing.T) {
	assert.False(t, IsRetryable(assert.AnError))
	assert.False(t, HasCode(assert.AnError, ErrCodeRateLimited))
}

func TestRetryabilityPerCode(t *testing.T) {
	retryable := []error{
		NewRateLimitedError("e", 1),
		NewUpstreamUnavailableError("e", assert.AnError),
		NewDatabaseWriteFailedError("basisprofielen", assert.AnError),
		NewDatabaseQueryFailedError("missing", assert.AnError),
	}
	for _, err := range retryable {
		assert.True(t, IsRetryable(err), err.Error())
	}

	permanent := []error{
		NewProfileNotFoundError("1"),
		NewUnexpectedStatusError("e", 400),
		NewInvalidPayloadError("e", "missing kvkNummer"),
		NewInvalidKVKNummerError("abc", assert.AnError),
		NewSubscriptionMissingError(),
	}
	for _, err := range permanent {
		assert.False(t, IsRetryable(err), err.Error())
	}
}
