package retry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Policy is the single retry policy used around every external call. It
// replaces the per-call-site retry loops that used to drift out of sync.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Multiplier:  2,
		MaxDelay:    30 * time.Second,
	}
}

func NewPolicy(maxAttempts, baseSeconds int) Policy {
	p := DefaultPolicy()
	if maxAttempts > 0 {
		p.MaxAttempts = maxAttempts
	}
	if baseSeconds > 0 {
		p.BaseDelay = time.Duration(baseSeconds) * time.Second
	}
	return p
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is exhausted. The last error is returned wrapped so the
// caller can surface a single soft failure.
func (p Policy) Do(ctx context.Context, logger zerolog.Logger, op string, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := p.Backoff(attempt - 1)
			logger.Warn().
				Str("op", op).
				Int("attempt", attempt+1).
				Dur("backoff", delay).
				Err(lastErr).
				Msg("Retrying after backoff")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, p.MaxAttempts, lastErr)
}

// Backoff returns the delay before the attempt following `attempt`
// (zero-based), growing geometrically and capped at MaxDelay.
func (p Policy) Backoff(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 0; i < attempt; i++ {
		delay = time.Duration(float64(delay) * p.Multiplier)
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// TransientError marks an error as worth retrying.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := err.(*TransientError); ok {
		return true
	}
	if t, ok := err.(interface{ Timeout() bool }); ok && t.Timeout() {
		return true
	}
	if t, ok := err.(interface{ Temporary() bool }); ok && t.Temporary() {
		return true
	}
	return false
}

func RetryableStatusCode(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusInternalServerError ||
		statusCode == http.StatusBadGateway ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout
}
