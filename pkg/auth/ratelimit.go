package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter checks whether another attempt for key is allowed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) error
}

// InProcessLimiter is a fixed-window limiter that tracks attempt counts
// per key in memory. It guards the login endpoint against password
// guessing.
type InProcessLimiter struct {
	perMinute int
	now       func() time.Time
	mu        sync.Mutex
	counters  map[string]*counter
}

type counter struct {
	count    int
	windowAt time.Time
}

// pruneThreshold is the counter map size above which expired windows are
// dropped on the next Allow call.
const pruneThreshold = 4096

// NewInProcessLimiter creates a limiter allowing perMinute attempts per key.
// A non-positive perMinute disables limiting.
func NewInProcessLimiter(perMinute int) *InProcessLimiter {
	return &InProcessLimiter{
		perMinute: perMinute,
		now:       time.Now,
		counters:  make(map[string]*counter),
	}
}

// Allow records an attempt for key and reports ErrTooManyRequests once the
// current window is exhausted.
func (l *InProcessLimiter) Allow(_ context.Context, key string) error {
	if l.perMinute <= 0 {
		return nil // no limit
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.counters) > pruneThreshold {
		l.prune(now)
	}

	c, ok := l.counters[key]
	if !ok || now.Sub(c.windowAt) >= time.Minute {
		// New window.
		l.counters[key] = &counter{count: 1, windowAt: now}
		return nil
	}

	c.count++
	if c.count > l.perMinute {
		return ErrTooManyRequests
	}

	return nil
}

// prune removes counters whose window has ended. Must be called with l.mu held.
func (l *InProcessLimiter) prune(now time.Time) {
	for key, c := range l.counters {
		if now.Sub(c.windowAt) >= time.Minute {
			delete(l.counters, key)
		}
	}
}
