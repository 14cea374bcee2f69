// Package ratelimit provides a per-host sliding-window rate limiter.
//
// The limiter keeps a log of grant times per host and guarantees that no
// window-length interval ever contains more than the configured number of
// grants. A token bucket cannot give that guarantee after a burst, which is
// why grants are tracked individually.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter grants requests per host, never allowing more than max grants
// within any window-length interval.
type Limiter struct {
	max    int
	window time.Duration

	mu     sync.Mutex
	grants map[string][]time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Limiter allowing at most max grants per host inside any
// sliding window of the given length.
func New(maxGrants int, window time.Duration) *Limiter {
	return &Limiter{
		max:    maxGrants,
		window: window,
		grants: make(map[string][]time.Time),
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// Wait blocks until a grant is available for host or the context is done.
func (l *Limiter) Wait(ctx context.Context, host string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		wait, ok := l.tryAcquire(host)
		if ok {
			return nil
		}

		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// tryAcquire records a grant for host if the window has room. When the
// window is full it returns how long until the oldest grant expires.
func (l *Limiter) tryAcquire(host string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	log := l.grants[host]
	kept := log[:0]
	for _, ts := range log {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) < l.max {
		l.grants[host] = append(kept, now)
		return 0, true
	}

	l.grants[host] = kept
	return kept[0].Add(l.window).Sub(now), false
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
