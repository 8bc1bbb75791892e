package httputil

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses, truncated
// bodies) with this type so that [Backoff.Do] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError]. It returns nil for a nil error.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err, or any error it wraps, is a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Backoff describes an exponential retry schedule.
type Backoff struct {
	// Attempts is the total number of calls, including the first one.
	Attempts int
	// Delay is the wait before the second attempt. It doubles after each failure.
	Delay time.Duration
	// Clock drives the waits. Nil means the real clock.
	Clock clockwork.Clock
	// OnRetry, if set, is called before each wait with the attempt that
	// just failed (1-based) and its error.
	OnRetry func(attempt int, err error)
}

// Do executes fn until it succeeds, returns a non-retryable error, or the
// attempts are exhausted. Returns the last error if all attempts fail, or
// ctx.Err() if ctx is cancelled while waiting.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	clock := b.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	delay := b.Delay
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			if b.OnRetry != nil {
				b.OnRetry(i+1, lastErr)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-clock.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
