// Package retry runs operations with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy controls how often and how patiently an operation is retried.
// MaxRetries counts additional attempts after the first one, so every
// operation runs at most MaxRetries+1 times.
type Policy struct {
	MaxRetries int
	Delay      time.Duration
	Multiplier float64

	sleep func(ctx context.Context, d time.Duration) error
}

// NewPolicy creates a retry policy.
func NewPolicy(maxRetries int, delay time.Duration, multiplier float64) Policy {
	return Policy{
		MaxRetries: maxRetries,
		Delay:      delay,
		Multiplier: multiplier,
		sleep:      sleepCtx,
	}
}

// Do runs op until it succeeds or the attempt budget is exhausted.
// All failures are treated alike; the final error is returned with the
// attempt count attached.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	delay := p.Delay
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			delay = time.Duration(float64(delay) * p.Multiplier)
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", p.MaxRetries+1, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
