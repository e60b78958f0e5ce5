package cache

import (
	"context"
	"errors"
	"time"
)

// retryAttempts bounds RetryWithBackoff; retryDelay is the first wait and
// doubles after each failure. Tests shorten the delay.
var (
	retryAttempts = 3
	retryDelay    = time.Second
)

type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Retryable marks err as transient so RetryWithBackoff tries again.
// It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err}
}

// IsRetryable reports whether err, or anything it wraps, was marked with
// Retryable.
func IsRetryable(err error) bool {
	return errors.As(err, new(transientError))
}

// RetryWithBackoff calls fn until it succeeds, returns an error not marked
// with Retryable, or runs out of attempts. It stops early with ctx.Err()
// when ctx is done between attempts.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	wait := retryDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
	}
}
