package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network errors, 5xx responses) with this type
// so that [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times with linear backoff.
// It only retries errors wrapped with [RetryableError]; other errors are
// returned immediately. The n-th retry waits n*backoff.
// Returns the last error (with the retry wrapper removed) if all attempts
// fail, or ctx.Err() if cancelled while waiting.
func Retry(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	return RetryNotify(ctx, attempts, backoff, fn, nil)
}

// RetryNotify is [Retry] with a callback invoked before each wait.
// attempt starts at 1 for the first retry.
func RetryNotify(ctx context.Context, attempts int, backoff time.Duration, fn func() error, notify func(attempt int, delay time.Duration)) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i == attempts-1 {
			break
		}

		delay := backoff * time.Duration(i+1)
		if notify != nil {
			notify(i+1, delay)
		}
		if delay <= 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return unwrapRetryable(lastErr)
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

func unwrapRetryable(err error) error {
	var re *RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}
