package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "kvk-connect/internal/common/errors"
	"kvk-connect/internal/common/logger"
)

func buildGet(t *testing.T, url string) func() (*http.Request, error) {
	t.Helper()
	return func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, url, nil)
	}
}

func TestDoWithRetryRecoversFrom429(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, 0, 3, logger.NewNoOpLogger())
	resp, err := c.DoWithRetry(context.Background(), buildGet(t, srv.URL))

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestDoWithRetryExhausted429(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, 0, 2, logger.NewNoOpLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.DoWithRetry(ctx, buildGet(t, srv.URL))

	require.Error(t, err)
	assert.True(t, apierrors.HasCode(err, apierrors.ErrCodeRateLimited))
	// A rate-limit exhaustion stays recoverable for the caller.
	assert.True(t, apierrors.IsRetryable(err))
}

func TestDoWithRetryDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, 0, 3, logger.NewNoOpLogger())
	resp, err := c.DoWithRetry(context.Background(), buildGet(t, srv.URL))

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestRateGateSpacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// 20 req/s -> 50ms spacing.
	c := NewClient(5*time.Second, 20, 1, logger.NewNoOpLogger())
	assert.Equal(t, 50*time.Millisecond, c.MinInterval())

	start := time.Now()
	for i := 0; i < 3; i++ {
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		resp, err := c.Do(context.Background(), req)
		require.NoError(t, err)
		resp.Body.Close()
	}
	// Three calls need at least two full intervals.
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestRateGateHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, 1, 1, logger.NewNoOpLogger()) // 1s spacing

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req2, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	_, err = c.Do(ctx, req2)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
