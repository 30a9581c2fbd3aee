// Package retry retries operations with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Strategy defines a retry strategy
type Strategy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
	// Retryable reports whether err is worth another attempt. Nil means
	// IsRetryable.
	Retryable func(error) bool
}

// DefaultStrategy returns three attempts with exponential backoff starting at 100ms.
func DefaultStrategy() *Strategy {
	return &Strategy{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not retryable regardless of the strategy.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err}
}

// Do calls fn until it succeeds, returns a non-retryable error, the attempts
// run out or ctx is done.
func Do(ctx context.Context, strategy *Strategy, fn func() error) error {
	_, err := Value(ctx, strategy, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Value is Do for functions that produce a result.
func Value[T any](ctx context.Context, strategy *Strategy, fn func() (T, error)) (T, error) {
	var zero T
	if strategy == nil {
		strategy = DefaultStrategy()
	}
	retryable := strategy.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}
	attempts := max(strategy.MaxAttempts, 1)

	var lastErr error
	delay := strategy.InitialDelay

	for attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		var pe permanentError
		if errors.As(err, &pe) {
			return zero, pe.err
		}
		if !retryable(err) {
			return zero, err
		}

		// no sleep after the last attempt
		if attempt == attempts-1 {
			break
		}
		wait := nextDelay(delay, strategy)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		case <-t.C:
		}
		delay = wait
	}

	return zero, fmt.Errorf("max attempts (%d) reached: %w", attempts, lastErr)
}

// nextDelay grows delay by the multiplier, caps it at MaxDelay and adds up to
// 10% jitter.
func nextDelay(delay time.Duration, s *Strategy) time.Duration {
	d := time.Duration(float64(delay) * s.Multiplier)
	if s.MaxDelay > 0 {
		d = min(d, s.MaxDelay)
	}
	if s.Jitter && d > 0 {
		d += time.Duration(rand.Float64() * float64(d) * 0.1)
	}
	return d
}

// IsRetryable returns false for context cancellation/timeout errors, true for all others.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
