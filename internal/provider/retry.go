package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"

	"shortsd/internal/structures"
)

// ErrStatus marks a non-2xx answer from the Data API.
var ErrStatus = errors.New("unexpected status")

// StatusError carries the HTTP status of a failed call.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %d: %s", ErrStatus, e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// RetryPolicy retries transient provider failures with exponential backoff.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:  5,
	InitialDelay: 2 * time.Second,
	MaxDelay:     30 * time.Second,
}

// NewRetryPolicy builds a policy from config, falling back to the defaults
// for unset values.
func NewRetryPolicy(conf structures.RetryConfig) RetryPolicy {
	p := DefaultRetryPolicy
	if conf.MaxAttempts > 0 {
		p.MaxAttempts = conf.MaxAttempts
	}
	if conf.InitialDelay > 0 {
		p.InitialDelay = conf.InitialDelay
	}
	if conf.MaxDelay > 0 {
		p.MaxDelay = conf.MaxDelay
	}
	if p.MaxDelay < p.InitialDelay {
		p.MaxDelay = p.InitialDelay
	}
	return p
}

// Do runs fn until it succeeds, fails terminally or attempts run out. The
// last error is returned as is.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepWithContext
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if serr := sleep(ctx, p.Backoff(attempt-1)); serr != nil {
				return serr
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !IsRetryable(err) {
			return err
		}
	}
	return err
}

// Backoff returns the wait before retry number n (1-based), doubling from
// InitialDelay and capped at MaxDelay.
func (p RetryPolicy) Backoff(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := float64(p.InitialDelay) * math.Pow(2, float64(n-1))
	if d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	if d < float64(p.InitialDelay) {
		return p.InitialDelay
	}
	return time.Duration(d)
}

// IsRetryable reports whether err is a rate limit, a server error or a
// network timeout.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
