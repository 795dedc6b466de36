package premortem

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryBase is the first Fibonacci backoff interval used by Retry.
var RetryBase = 1 * time.Second

// MaxRetries bounds the retries Retry performs after the first attempt.
const MaxRetries = 5

// Retry executes task with Fibonacci backoff up to MaxRetries retries.
// Only errors for which ShouldRetry returns true are retried.
// If retries are exhausted, gaveUpTask is invoked (when not nil) and the final error is returned.
func Retry(ctx context.Context, task func(ctx context.Context) error, gaveUpTask func(ctx context.Context)) error {
	return RetryN(ctx, MaxRetries, task, gaveUpTask)
}

// RetryN is Retry with an explicit retry budget.
func RetryN(ctx context.Context, maxRetries uint64, task func(ctx context.Context) error, gaveUpTask func(ctx context.Context)) error {
	b := retry.NewFibonacci(RetryBase)
	err := retry.Do(ctx, retry.WithMaxRetries(maxRetries, b), func(ctx context.Context) error {
		err := task(ctx)
		if ShouldRetry(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		log.Warn(err.Error() + ", gave up")
		if gaveUpTask != nil {
			gaveUpTask(ctx)
		}
		return err
	}
	return nil
}

// StatusError is returned by HTTP collaborators for a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err so ShouldRetry never retries it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// ShouldRetry reports whether the error is retryable (non-nil and not a known permanent failure).
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	// Context cancellations/timeouts are permanent from the caller's POV.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pe permanentError
	if errors.As(err, &pe) {
		return false
	}
	var se StatusError
	if errors.As(err, &se) {
		// Client errors will not change on retry, except throttling.
		if se.StatusCode == http.StatusTooManyRequests || se.StatusCode == http.StatusRequestTimeout {
			return true
		}
		return se.StatusCode >= 500
	}
	switch CodeOf(err) {
	case GenerationFailure, MalformedScenario, PolicyConfigInvalid:
		return false
	}
	return true
}
