package ratelimit

import (
	"sync"
	"testing"
	"time"
)

// clock is a settable fake time source
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(limit int, window time.Duration) (*Limiter, *clock) {
	ck := &clock{t: time.Unix(1_700_000_000, 0)}
	return New(Options{Limit: limit, Window: window, Now: ck.now}), ck
}

func TestAllowUpToLimitThenReject(t *testing.T) {
	l, _ := newTestLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		if !l.Allow("user-a") {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	if l.Allow("user-a") {
		t.Fatalf("call 6 should be rejected")
	}
}

func TestIdentitiesAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(2, time.Minute)

	l.Allow("a")
	l.Allow("a")
	if l.Allow("a") {
		t.Fatalf("a should be exhausted")
	}
	if !l.Allow("b") {
		t.Fatalf("b should be unaffected by a's counter")
	}
}

func TestWindowRolloverResets(t *testing.T) {
	l, ck := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		l.Allow("u")
	}
	if l.Allow("u") {
		t.Fatalf("should be exhausted before rollover")
	}

	ck.advance(time.Minute)
	if !l.Allow("u") {
		t.Fatalf("fresh window should allow again")
	}
}

func TestMidWindowAdvanceDoesNotReset(t *testing.T) {
	l, ck := newTestLimiter(2, time.Minute)

	// pin to the start of a window so the advance stays inside it
	base := time.Unix(1_700_000_000, 0)
	base = base.Truncate(time.Minute)
	ck.mu.Lock()
	ck.t = base
	ck.mu.Unlock()

	l.Allow("u")
	ck.advance(30 * time.Second)
	l.Allow("u")
	if l.Allow("u") {
		t.Fatalf("same window, counter must persist across the advance")
	}
}

func TestStaleWindowsAreEvicted(t *testing.T) {
	l, ck := newTestLimiter(5, time.Minute)

	l.Allow("u")
	if got := len(l.counts); got != 1 {
		t.Fatalf("counters = %d want 1", got)
	}

	// previous window is retained, two windows back is evicted
	ck.advance(time.Minute)
	l.Allow("u")
	if got := len(l.counts); got != 2 {
		t.Fatalf("counters after one rollover = %d want 2", got)
	}

	ck.advance(time.Minute)
	l.Allow("u")
	if got := len(l.counts); got != 2 {
		t.Fatalf("counters after two rollovers = %d want 2 (stale evicted)", got)
	}
}

func TestDefaults(t *testing.T) {
	l := New(Options{})
	if l.Limit() != DefaultLimit {
		t.Fatalf("limit = %d want %d", l.Limit(), DefaultLimit)
	}
	if l.Window() != DefaultWindow {
		t.Fatalf("window = %v want %v", l.Window(), DefaultWindow)
	}
}

func TestConcurrentAllowCountsExactly(t *testing.T) {
	const limit = 200
	l, _ := newTestLimiter(limit, time.Minute)

	var wg sync.WaitGroup
	allowed := make(chan bool, limit*2)
	for i := 0; i < limit*2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- l.Allow("u")
		}()
	}
	wg.Wait()
	close(allowed)

	var yes int
	for ok := range allowed {
		if ok {
			yes++
		}
	}
	if yes != limit {
		t.Fatalf("allowed %d of %d calls, want exactly %d", yes, limit*2, limit)
	}
}
