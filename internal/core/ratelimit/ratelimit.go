// Package ratelimit implements a fixed-window request limiter keyed by
// caller identity. It is in-process and best-effort: counters live in a
// map guarded by a mutex, so a multi-instance deployment rate limits per
// instance, not globally
package ratelimit

import (
	"strconv"
	"sync"
	"time"
)

// Defaults applied when Options fields are zero
const (
	DefaultLimit  = 100
	DefaultWindow = 60 * time.Second
)

// Options configures a Limiter
type Options struct {
	// Limit is the number of calls allowed per identity per window
	Limit int

	// Window is the fixed window size
	Window time.Duration

	// Now overrides the clock, for tests
	Now func() time.Time
}

// Limiter is a fixed-window counter per identity
// safe for concurrent use
type Limiter struct {
	mu     sync.Mutex
	counts map[string]int

	limit  int
	window time.Duration
	now    func() time.Time
}

// New builds a Limiter, filling zero options with defaults
func New(opt Options) *Limiter {
	if opt.Limit <= 0 {
		opt.Limit = DefaultLimit
	}
	if opt.Window <= 0 {
		opt.Window = DefaultWindow
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Limiter{
		counts: make(map[string]int),
		limit:  opt.Limit,
		window: opt.Window,
		now:    opt.Now,
	}
}

// Allow records one call for identity and reports whether it fits the
// current window. The counter increments first, then compares, so the
// call that lands exactly on the limit is still allowed
func (l *Limiter) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	win := l.now().UnixMilli() / l.window.Milliseconds()
	l.evictLocked(identity, win)

	key := identity + "-" + strconv.FormatInt(win, 10)
	l.counts[key]++
	return l.counts[key] <= l.limit
}

// Limit returns the configured per-window limit
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window size
func (l *Limiter) Window() time.Duration { return l.window }

// evictLocked drops counters more than one window behind current
// the previous window is kept so a rollover doesn't momentarily forget
// in-flight history, matching the eviction rule the counters were built with
func (l *Limiter) evictLocked(_ string, current int64) {
	for key := range l.counts {
		idx := windowIndexOf(key)
		if idx >= 0 && current-idx > 1 {
			delete(l.counts, key)
		}
	}
}

// windowIndexOf parses the trailing window index from a counter key
// returns -1 when the key has no parseable suffix
func windowIndexOf(key string) int64 {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '-' {
			n, err := strconv.ParseInt(key[i+1:], 10, 64)
			if err != nil {
				return -1
			}
			return n
		}
	}
	return -1
}
