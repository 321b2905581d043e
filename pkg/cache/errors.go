package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a remote backend (Redis, MongoDB) that could not be
// reached.
var ErrUnavailable = errors.New("backend unavailable")

// RetryableError marks a failure worth retrying, such as a refused
// connection. Bad credentials and malformed URLs are returned unwrapped.
type RetryableError struct{ Err error }

// Retryable marks err as retryable. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err or any error it wraps is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff retries an operation with exponentially growing delays.
type Backoff struct {
	Attempts int           // total calls, at least 1
	Initial  time.Duration // delay after the first failure; doubles each time
}

// DefaultBackoff is used when a backend connects at startup.
var DefaultBackoff = Backoff{Attempts: 3, Initial: time.Second}

// Retry calls fn until it succeeds, fails with an error that is not
// retryable, or runs out of attempts; the last error is returned. A
// cancelled ctx ends the wait between attempts.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	delay := b.Initial
	var err error
	for i := range max(b.Attempts, 1) {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}

// RetryWithBackoff retries fn with [DefaultBackoff].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Retry(ctx, fn)
}
