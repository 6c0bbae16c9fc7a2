// ABOUTME: Retry policy helpers shared by the embedding and generation clients
// ABOUTME: Classifies transient service errors and builds the backoff schedule
package util

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"
)

// backoffCap bounds a single backoff sleep regardless of attempt count.
const backoffCap = 30 * time.Second

// NewBackoff returns the retry schedule used for remote model calls:
// exponential growth from baseDelay with jitter, capped per sleep, giving
// up after maxRetries additional attempts.
func NewBackoff(baseDelay time.Duration, maxRetries int) retry.Backoff {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		// retry.NewExponential panics on a non-positive base.
		baseDelay = time.Second
	}
	b := retry.NewExponential(baseDelay)
	b = retry.WithJitterPercent(25, b)
	b = retry.WithCappedDuration(backoffCap, b)
	return retry.WithMaxRetries(uint64(maxRetries), b)
}

// IsRetryable reports whether an embedding or generation call failed in a
// way worth retrying: rate limits, 5xx-class responses, network errors, and
// per-attempt timeouts. Cancellation and 4xx-class responses are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	// A timed-out attempt is treated like any other transient failure.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 0 || reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}

	// Anything else (connection refused, reset, DNS) is transport-level.
	return true
}
