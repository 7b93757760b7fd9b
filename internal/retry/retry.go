// Package retry provides the single bounded-attempts fixed-delay policy
// shared by index creation, upserts, and mail sends.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy holds the retry parameters for one class of operations.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Default is the service-wide policy: small attempt count, fixed delay,
// never unbounded.
var Default = Policy{Attempts: 3, Delay: time.Second}

// Do runs fn up to p.Attempts times, sleeping p.Delay between attempts.
// The context is checked before every attempt so cancellation stops the
// loop without starting a new call.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: %w", op, ctx.Err())
			case <-time.After(p.Delay):
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, lastErr)
}
