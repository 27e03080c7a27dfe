// Package ratelimit implements client-side sliding-window admission
// control for outbound completion-API calls.
//
// One Limiter is bound to exactly one API client. Every network call to
// that backend must pass Allow() first; a denial carries a wait hint via
// RetryAfter(). This gates our own call rate only — a downstream 429 is
// still reported as a backend error.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Defaults used when the configuration supplies nothing.
const (
	DefaultMaxCalls = 10
	DefaultWindow   = time.Minute
)

// Limiter admits at most maxCalls calls per trailing window. The zero
// value is not usable; construct with New.
type Limiter struct {
	mu       sync.Mutex
	maxCalls int
	window   time.Duration
	calls    []time.Time

	// now is injectable so tests can drive the clock.
	now func() time.Time
}

// New returns a Limiter admitting maxCalls per window. Non-positive
// arguments fall back to the defaults.
func New(maxCalls int, window time.Duration) *Limiter {
	if maxCalls <= 0 {
		maxCalls = DefaultMaxCalls
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		maxCalls: maxCalls,
		window:   window,
		calls:    make([]time.Time, 0, maxCalls),
		now:      time.Now,
	}
}

// Allow reports whether one more call may proceed. Expired timestamps
// are evicted first; on admission the current instant is recorded. The
// check and the append are atomic, so concurrent callers can never push
// the admitted count past maxCalls.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)
	if len(l.calls) >= l.maxCalls {
		return false
	}
	l.calls = append(l.calls, now)
	return true
}

// RetryAfter returns how long the caller should wait for a slot to free
// up, or zero when a slot is already available.
func (l *Limiter) RetryAfter() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)
	if len(l.calls) < l.maxCalls {
		return 0
	}
	wait := l.window - now.Sub(l.calls[0])
	if wait < 0 {
		return 0
	}
	return wait
}

// evict drops timestamps that have aged out of the window. calls is
// append-only and therefore ordered, so the oldest entries sit in front.
func (l *Limiter) evict(now time.Time) {
	cut := 0
	for cut < len(l.calls) && now.Sub(l.calls[cut]) >= l.window {
		cut++
	}
	if cut > 0 {
		l.calls = append(l.calls[:0], l.calls[cut:]...)
	}
}

// LimitError signals that admission was denied. Wait is informational:
// retrying is a caller decision, never done here.
type LimitError struct {
	Wait time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: retry in %s", e.Wait.Round(time.Millisecond))
}
