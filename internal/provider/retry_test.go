package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"shortsd/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instantPolicy(attempts int) (RetryPolicy, *[]time.Duration) {
	waits := []time.Duration{}
	p := RetryPolicy{MaxAttempts: attempts, InitialDelay: 2 * time.Second, MaxDelay: 30 * time.Second}
	p.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return p, &waits
}

func TestRetryPolicy_RetriesRateLimitThenSucceeds(t *testing.T) {
	p, waits := instantPolicy(5)
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{Code: http.StatusTooManyRequests}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *waits)
}

func TestRetryPolicy_TerminalClientError(t *testing.T) {
	p, waits := instantPolicy(5)
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return &StatusError{Code: http.StatusForbidden}
	})
	assert.ErrorIs(t, err, ErrStatus)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *waits)
}

func TestRetryPolicy_ExhaustsAttempts(t *testing.T) {
	p, waits := instantPolicy(5)
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return &StatusError{Code: http.StatusServiceUnavailable}
	})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Equal(t, 5, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}, *waits)
}

func TestRetryPolicy_StopsOnCancel(t *testing.T) {
	p, _ := instantPolicy(5)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return &StatusError{Code: http.StatusInternalServerError}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_BackoffCapped(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 10, InitialDelay: 2 * time.Second, MaxDelay: 30 * time.Second}
	assert.Equal(t, 2*time.Second, p.Backoff(1))
	assert.Equal(t, 16*time.Second, p.Backoff(4))
	assert.Equal(t, 30*time.Second, p.Backoff(5))
	assert.Equal(t, 30*time.Second, p.Backoff(9))
}

func TestNewRetryPolicy_Defaults(t *testing.T) {
	p := NewRetryPolicy(structures.RetryConfig{})
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, 2*time.Second, p.InitialDelay)
	assert.Equal(t, 30*time.Second, p.MaxDelay)

	p = NewRetryPolicy(structures.RetryConfig{MaxAttempts: 2, InitialDelay: time.Minute, MaxDelay: time.Second})
	assert.Equal(t, 2, p.MaxAttempts)
	assert.Equal(t, time.Minute, p.MaxDelay)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&StatusError{Code: 429}))
	assert.True(t, IsRetryable(&StatusError{Code: 502}))
	assert.False(t, IsRetryable(&StatusError{Code: 404}))
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, IsRetryable(context.DeadlineExceeded))
	assert.False(t, IsRetryable(nil))
}
