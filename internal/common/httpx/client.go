// Package httpx wraps net/http with the two behaviors every registry call
// needs: a client-side request-rate gate and backoff-retry on 429/5xx.
package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	apierrors "kvk-connect/internal/common/errors"
	"kvk-connect/internal/common/logger"
	"kvk-connect/internal/common/metrics"
)

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

// Client is a rate-gated HTTP client. Requests are spaced at least
// 1/ratePerSecond apart with no burst allowance, and 429/5xx responses are
// retried with exponential backoff before an error surfaces to the caller.
type Client struct {
	httpClient  *http.Client
	minInterval time.Duration
	maxRetries  int
	logger      logger.Logger

	mu       sync.Mutex
	nextSlot time.Time
}

// NewClient builds a Client capped at ratePerSecond upstream calls. A
// non-positive rate disables the gate.
func NewClient(timeout time.Duration, ratePerSecond, maxRetries int, log logger.Logger) *Client {
	var interval time.Duration
	if ratePerSecond > 0 {
		interval = time.Second / time.Duration(ratePerSecond)
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		minInterval: interval,
		maxRetries:  maxRetries,
		logger:      log,
	}
}

// MinInterval returns the enforced spacing between requests.
func (c *Client) MinInterval() time.Duration {
	return c.minInterval
}

// Do performs a single request after waiting for the next rate slot.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.waitForSlot(ctx); err != nil {
		return nil, err
	}
	return c.httpClient.Do(req.WithContext(ctx))
}

// DoWithRetry performs a request, rebuilding it per attempt, until it gets a
// response outside the 429/5xx range or the retry budget runs out. A 429 is
// never surfaced as-is: it either recovers or becomes a retryable
// RATE_LIMITED error.
func (c *Client) DoWithRetry(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	backoff := initialBackoff
	var lastStatus int
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := c.Do(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastStatus = 0
			lastErr = err
			c.logger.Warn("registry request failed, backing off", map[string]interface{}{
				"path":    req.URL.Path,
				"attempt": attempt,
				"error":   err.Error(),
				"backoff": backoff.String(),
			})
		} else if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastStatus = resp.StatusCode
			if resp.StatusCode == http.StatusTooManyRequests {
				metrics.APIRateLimited.Inc()
				if d := retryAfter(resp); d > 0 {
					backoff = d
				}
			}
			resp.Body.Close()
			c.logger.Warn("registry throttled, backing off", map[string]interface{}{
				"path":    req.URL.Path,
				"status":  resp.StatusCode,
				"attempt": attempt,
				"backoff": backoff.String(),
			})
		} else {
			return resp, nil
		}

		if attempt == c.maxRetries {
			break
		}
		if err := sleepCtx(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	req, _ := build()
	path := ""
	if req != nil {
		path = req.URL.Path
	}
	if lastStatus == http.StatusTooManyRequests {
		return nil, apierrors.NewRateLimitedError(path, c.maxRetries)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("status %d after %d attempts", lastStatus, c.maxRetries)
	}
	return nil, apierrors.NewUpstreamUnavailableError(path, lastErr)
}

// waitForSlot blocks until this request's rate slot arrives. Slots are
// handed out strictly minInterval apart, so there is no burst.
func (c *Client) waitForSlot(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}

	c.mu.Lock()
	now := time.Now()
	slot := c.nextSlot
	if slot.Before(now) {
		slot = now
	}
	c.nextSlot = slot.Add(c.minInterval)
	c.mu.Unlock()

	if wait := time.Until(slot); wait > 0 {
		return sleepCtx(ctx, wait)
	}
	return nil
}

func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
