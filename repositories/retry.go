package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNoUpsertDetail is reported when every attempt ended without a usable
// result and without an error from the driver.
var ErrNoUpsertDetail = errors.New("upsert not acknowledged: no further detail")

// RetryPolicy describes a bounded retry of an idempotent write.
type RetryPolicy[T any] struct {
	MaxAttempts int
	// Backoff returns the wait after the given failed attempt (1-based).
	Backoff func(attempt int) time.Duration
	// Succeeded reports whether a result without error counts as success.
	Succeeded func(T) bool
	// Sleep waits for d or until ctx is done. Defaults to a timer select.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called after every failed attempt that will be retried.
	OnRetry func(attempt int, err error)
}

// RetryError is returned when all attempts failed.
type RetryError struct {
	Attempts int
	Cause    error
}

func (e *RetryError) Error() string {
	return "retry exhausted: " + e.Cause.Error()
}

func (e *RetryError) Unwrap() error { return e.Cause }

// LinearBackoff waits step × attempt.
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return step * time.Duration(attempt)
	}
}

// UpsertSucceeded accepts an acknowledged update that matched, modified or
// inserted a document. A match without modification means the stored data
// was already identical.
func UpsertSucceeded(res *mongo.UpdateResult) bool {
	if res == nil {
		return false
	}
	return res.ModifiedCount > 0 || res.UpsertedCount > 0 || res.MatchedCount > 0
}

// DefaultUpsertPolicy is 3 attempts with 750ms × attempt backoff.
func DefaultUpsertPolicy() RetryPolicy[*mongo.UpdateResult] {
	return RetryPolicy[*mongo.UpdateResult]{
		MaxAttempts: 3,
		Backoff:     LinearBackoff(750 * time.Millisecond),
		Succeeded:   UpsertSucceeded,
	}
}

// Retry runs op until it succeeds or the policy gives up.
func Retry[T any](ctx context.Context, p RetryPolicy[T], op func(ctx context.Context) (T, error)) (T, int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := op(ctx)
		if err == nil && (p.Succeeded == nil || p.Succeeded(res)) {
			return res, attempt, nil
		}
		if err != nil {
			lastErr = err
		}

		if attempt == maxAttempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		if ctx.Err() != nil {
			return zero, attempt, ctx.Err()
		}
		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if err := sleep(ctx, wait); err != nil {
			return zero, attempt, err
		}
	}

	if lastErr == nil {
		lastErr = ErrNoUpsertDetail
	}
	return zero, maxAttempts, &RetryError{Attempts: maxAttempts, Cause: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
