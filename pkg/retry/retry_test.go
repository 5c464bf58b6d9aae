package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Multiplier:  2,
		MaxDelay:    10 * time.Millisecond,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), zerolog.Nop(), "op", func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientErrors(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), zerolog.Nop(), "op", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return Transient(errors.New("flaky"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad request")
	calls := 0
	err := fastPolicy().Do(context.Background(), zerolog.Nop(), "op", func(ctx context.Context) error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), zerolog.Nop(), "op", func(ctx context.Context) error {
		calls++
		return Transient(errors.New("always down"))
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := fastPolicy().Do(ctx, zerolog.Nop(), "op", func(ctx context.Context) error {
		calls++
		cancel()
		return Transient(errors.New("flaky"))
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	p := Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		Multiplier:  2,
		MaxDelay:    3 * time.Second,
	}
	assert.Equal(t, time.Second, p.Backoff(0))
	assert.Equal(t, 2*time.Second, p.Backoff(1))
	assert.Equal(t, 3*time.Second, p.Backoff(2))
	assert.Equal(t, 3*time.Second, p.Backoff(10))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.True(t, IsRetryable(Transient(errors.New("wrapped"))))
}

func TestTransientUnwraps(t *testing.T) {
	inner := errors.New("inner")
	assert.ErrorIs(t, Transient(inner), inner)
	assert.Nil(t, Transient(nil))
}

func TestRetryableStatusCode(t *testing.T) {
	assert.True(t, RetryableStatusCode(http.StatusTooManyRequests))
	assert.True(t, RetryableStatusCode(http.StatusServiceUnavailable))
	assert.True(t, RetryableStatusCode(http.StatusGatewayTimeout))
	assert.False(t, RetryableStatusCode(http.StatusOK))
	assert.False(t, RetryableStatusCode(http.StatusBadRequest))
	assert.False(t, RetryableStatusCode(http.StatusUnauthorized))
}
