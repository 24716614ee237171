// Package ratelimit paces invocations into a single scraper. Each enabled
// scraper owns one Limiter for the lifetime of a run; the limiter bounds the
// observed call rate no matter how many engine workers share the scraper.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// windowSpan is the rolling window over which per-minute limits apply.
const windowSpan = time.Minute

// Limiter admits calls under a rolling per-minute cap and applies a fixed
// pacing delay after every call. The zero limit means unbounded admission;
// the zero delay means no pacing hold.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	delay  time.Duration
	window []time.Time // admission stamps within the trailing window

	now   func() time.Time                           // injectable for testing
	sleep func(context.Context, time.Duration) error // injectable for testing
}

// New creates a limiter admitting at most perMinute calls per rolling
// minute (0 = unlimited) and holding callers for delay after each call.
func New(perMinute int, delay time.Duration) *Limiter {
	return &Limiter{
		limit: perMinute,
		delay: delay,
		now:   time.Now,
		sleep: sleepContext,
	}
}

// WithClock overrides the time source and sleep function, for tests.
func (l *Limiter) WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) *Limiter {
	l.now = now
	l.sleep = sleep
	return l
}

// Wait blocks until the rolling window admits another call, recording the
// admission stamp. Several goroutines may wait at once; freed slots are
// re-contended, so the cap holds under concurrency.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.limit <= 0 {
		return nil
	}

	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)
		if len(l.window) < l.limit {
			l.window = append(l.window, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.window[0].Add(windowSpan).Sub(now)
		l.mu.Unlock()

		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Pace holds the caller for the configured fixed delay. Applied after every
// invocation, successful or not.
func (l *Limiter) Pace(ctx context.Context) error {
	if l.delay <= 0 {
		return ctx.Err()
	}
	return l.sleep(ctx, l.delay)
}

// prune drops stamps that have aged out of the window. Callers hold mu.
func (l *Limiter) prune(now time.Time) {
	cut := 0
	for cut < len(l.window) && now.Sub(l.window[cut]) >= windowSpan {
		cut++
	}
	if cut > 0 {
		l.window = append(l.window[:0], l.window[cut:]...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
