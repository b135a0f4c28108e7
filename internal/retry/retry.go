// Package retry provides a bounded exponential-backoff policy for calls to
// hosted model APIs. Retry decisions are explicit here rather than scattered
// per call site.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Policy describes a bounded retry schedule. The zero value retries nothing;
// use Default() for the standard schedule.
type Policy struct {
	MaxAttempts int           // total attempts including the first
	BaseDelay   time.Duration // delay before the second attempt
	MaxDelay    time.Duration // cap for the exponential backoff
}

// Default returns the standard schedule: 4 attempts, 500ms base, 8s cap.
func Default() Policy {
	return Policy{
		MaxAttempts: 4,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is exhausted. Backoff doubles per attempt up to MaxDelay
// and honors ctx cancellation while waiting.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	delay := p.BaseDelay
	var err error

	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !Retryable(err) {
			return err
		}
		if attempt >= attempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry canceled: %w", ctx.Err())
		case <-timer.C:
		}

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
}

// Retryable reports whether an error is transient: rate limits, provider
// 5xx/timeouts, and context deadline on an individual call. Auth, parse,
// and validation errors are not retried.
func Retryable(err error) bool {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return true
	case errors.Is(err, domain.ErrProviderError):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	default:
		return false
	}
}
