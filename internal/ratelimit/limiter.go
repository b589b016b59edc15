// Package ratelimit implements a fixed-window in-memory attempt counter
// used to blunt brute-force attempts against the auth endpoints. It is
// per-process and best-effort: counters are lost on restart and are not
// shared between instances, so it must not be treated as a security
// boundary on its own.
package ratelimit

import (
	"sync"
	"time"
)

// Policy bounds attempts per identifier inside a fixed window.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
}

// Result is the outcome of a single Check call. When Allowed is false,
// callers derive the wait time from ResetAt.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter owns the attempt map. Create one per process with New and
// inject it where needed; tests create isolated instances with a fake
// clock.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

const sweepInterval = 5 * time.Minute

// New returns a Limiter whose expired entries are pruned every five
// minutes until Close is called.
func New() *Limiter {
	l := &Limiter{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// NewWithClock returns a Limiter without a background sweeper, reading
// time from the given function. Intended for tests.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		entries: make(map[string]entry),
		now:     now,
		stop:    make(chan struct{}),
	}
}

// Check records one attempt for identifier under the given policy.
// The read-check-increment sequence is guarded by the mutex: two
// concurrent requests for the same identifier must not both observe
// count < MaxAttempts and slip through.
func (l *Limiter) Check(identifier string, p Policy) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[identifier]
	if !ok || e.resetAt.Before(now) {
		// First attempt, or the previous window has expired.
		resetAt := now.Add(p.Window)
		l.entries[identifier] = entry{count: 1, resetAt: resetAt}
		return Result{Allowed: true, Remaining: p.MaxAttempts - 1, ResetAt: resetAt}
	}
	if e.count >= p.MaxAttempts {
		return Result{Allowed: false, Remaining: 0, ResetAt: e.resetAt}
	}
	e.count++
	l.entries[identifier] = e
	return Result{Allowed: true, Remaining: p.MaxAttempts - e.count, ResetAt: e.resetAt}
}

// Reset drops the entry for identifier so the next Check behaves as a
// first attempt. Called after a successful login to clear throttling.
func (l *Limiter) Reset(identifier string) {
	l.mu.Lock()
	delete(l.entries, identifier)
	l.mu.Unlock()
}

// Close stops the background sweeper. Safe to call more than once.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweepLoop() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep removes entries whose window has passed, bounding memory growth
// from abandoned identifiers.
func (l *Limiter) sweep() {
	l.mu.Lock()
	now := l.now()
	for k, e := range l.entries {
		if e.resetAt.Before(now) {
			delete(l.entries, k)
		}
	}
	l.mu.Unlock()
}
