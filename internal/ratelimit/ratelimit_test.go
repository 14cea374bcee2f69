package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock advances time only when the limiter sleeps.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) install(l *Limiter) {
	l.now = func() time.Time { return c.now }
	l.sleep = func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.now = c.now.Add(d)
		return nil
	}
}

func TestWaitEnforcesSlidingWindow(t *testing.T) {
	t.Parallel()

	const (
		maxGrants = 3
		window    = time.Minute
		total     = 10
	)

	l := New(maxGrants, window)
	clock := &fakeClock{now: time.Unix(0, 0)}
	clock.install(l)

	var grantTimes []time.Time
	for range total {
		require.NoError(t, l.Wait(context.Background(), "standings.example"))
		grantTimes = append(grantTimes, clock.now)
	}

	// No window-length interval may contain more than maxGrants grants.
	for i := range grantTimes {
		count := 0
		for j := i; j < len(grantTimes); j++ {
			if grantTimes[j].Sub(grantTimes[i]) < window {
				count++
			}
		}
		require.LessOrEqual(t, count, maxGrants)
	}
}

func TestWaitBurstThenDelay(t *testing.T) {
	t.Parallel()

	l := New(2, time.Minute)
	clock := &fakeClock{now: time.Unix(0, 0)}
	clock.install(l)

	start := clock.now
	for range 2 {
		require.NoError(t, l.Wait(context.Background(), "h"))
	}
	require.Equal(t, start, clock.now)

	// Third grant must wait out the oldest grant in the window.
	require.NoError(t, l.Wait(context.Background(), "h"))
	require.Equal(t, start.Add(time.Minute), clock.now)
}

func TestHostsAreIndependent(t *testing.T) {
	t.Parallel()

	l := New(1, time.Hour)
	clock := &fakeClock{now: time.Unix(0, 0)}
	clock.install(l)

	start := clock.now
	require.NoError(t, l.Wait(context.Background(), "a.example"))
	require.NoError(t, l.Wait(context.Background(), "b.example"))
	require.Equal(t, start, clock.now, "different hosts must not share a window")
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	l := New(1, time.Hour)
	clock := &fakeClock{now: time.Unix(0, 0)}
	clock.install(l)

	require.NoError(t, l.Wait(context.Background(), "h"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, l.Wait(ctx, "h"), context.Canceled)
}
