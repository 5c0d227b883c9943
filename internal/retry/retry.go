// Package retry implements bounded retries with exponential backoff for
// transient failures, such as conditional-write conflicts on the vote ledger.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy configures retry behavior.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	OnRetry        func(attempt int, err error, backoff time.Duration)
}

// Classify reports whether err is transient and worth retrying.
type Classify func(err error) bool

// Operation is a retryable operation producing a value.
type Operation[T any] func() (T, error)

// Do runs op until it succeeds, fails permanently, or exhausts p.MaxAttempts.
// A non-retryable error is returned immediately and untouched, so callers can
// inspect its type.
func Do[T any](ctx context.Context, p Policy, classify Classify, op Operation[T]) (T, error) {
	backoff := p.InitialBackoff

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		val, err := op()
		if err == nil {
			return val, nil
		}

		if !classify(err) {
			var zero T
			return zero, err
		}

		if attempt == p.MaxAttempts {
			var zero T
			return zero, fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, backoff)
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			var zero T
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}

	panic("unreachable: MaxAttempts must be >= 1")
}
