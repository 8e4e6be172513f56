// Package retry provides the bounded exponential backoff loop used around
// remote catalog listings and object downloads.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Policy bounds one retry loop. Values are fixed at construction and safe to
// share across goroutines.
type Policy struct {
	MaxAttempts int           // total attempts including the first
	BaseDelay   time.Duration // delay after the first failure
	Multiplier  float64       // delay growth per failure, values below 1 mean constant delay
	MaxDelay    time.Duration // ceiling for the delay, 0 means uncapped
}

// DefaultPolicy allows two retries after the initial attempt with doubling
// delays.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Multiplier:  2,
		MaxDelay:    10 * time.Second,
	}
}

// Do runs op until it succeeds, attempts run out, or ctx is cancelled. Delays
// wait on the supplied clock so tests can drive them with a fake. The returned
// error wraps the last op error, so errors.Is sees through the retry layer.
func Do(ctx context.Context, clk clockwork.Clock, p Policy, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		if !sleep(ctx, clk, delay) {
			return fmt.Errorf("interrupted after attempt %d: %w", attempt, ctx.Err())
		}
		delay = nextDelay(delay, p)
	}
	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

func nextDelay(current time.Duration, p Policy) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	next := time.Duration(float64(current) * mult)
	if p.MaxDelay > 0 && next > p.MaxDelay {
		return p.MaxDelay
	}
	return next
}

// sleep waits for d on the clock. Returns false if ctx was cancelled first.
func sleep(ctx context.Context, clk clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	select {
	case <-clk.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
