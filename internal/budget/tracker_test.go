package budget

import (
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests drive the rolling window deterministically.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestTracker(rpm, tpm int, margin float64) (*Tracker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := New(rpm, tpm, margin)
	tr.now = clock.now
	tr.windowStart = clock.now()
	return tr, clock
}

func TestReserveRequestLimit(t *testing.T) {
	// 10 req/min at 0.8 margin allows 8 requests per window.
	tr, _ := newTestTracker(10, 100000, 0.8)

	for i := 0; i < 8; i++ {
		res, wait := tr.Reserve(0)
		if wait != 0 {
			t.Fatalf("reserve %d: wait = %v, want 0", i+1, wait)
		}
		if res == nil {
			t.Fatalf("reserve %d: nil reservation", i+1)
		}
	}

	res, wait := tr.Reserve(0)
	if res != nil {
		t.Error("9th reserve should not grant a reservation")
	}
	if wait <= 0 || wait > 60*time.Second {
		t.Errorf("9th reserve wait = %v, want in (0, 60s]", wait)
	}

	requests, _ := tr.Usage()
	if requests != 8 {
		t.Errorf("requests used = %d, want 8", requests)
	}
}

func TestReserveTokenLimit(t *testing.T) {
	// 1000 tokens/min at 0.8 margin allows 800 tokens.
	tr, _ := newTestTracker(100, 1000, 0.8)

	if res, wait := tr.Reserve(600); wait != 0 || res == nil {
		t.Fatalf("first reserve: res=%v wait=%v", res, wait)
	}
	if res, wait := tr.Reserve(300); res != nil || wait <= 0 {
		t.Errorf("over-budget reserve: res=%v wait=%v, want nil and positive wait", res, wait)
	}
	if res, wait := tr.Reserve(200); wait != 0 || res == nil {
		t.Errorf("fitting reserve: res=%v wait=%v, want granted", res, wait)
	}
}

func TestWindowReset(t *testing.T) {
	tr, clock := newTestTracker(10, 1000, 0.8)

	for i := 0; i < 8; i++ {
		tr.Reserve(10)
	}
	if res, _ := tr.Reserve(10); res != nil {
		t.Fatal("window should be full")
	}

	clock.advance(61 * time.Second)

	res, wait := tr.Reserve(10)
	if res == nil || wait != 0 {
		t.Errorf("after window reset: res=%v wait=%v, want granted", res, wait)
	}
	requests, tokens := tr.Usage()
	if requests != 1 || tokens != 10 {
		t.Errorf("usage after reset = (%d, %d), want (1, 10)", requests, tokens)
	}
}

func TestReconcileSameWindow(t *testing.T) {
	tr, _ := newTestTracker(100, 10000, 1.0)

	res, _ := tr.Reserve(500)
	res.Reconcile(700)

	_, tokens := tr.Usage()
	if tokens != 700 {
		t.Errorf("tokens after reconcile = %d, want 700", tokens)
	}

	// Negative delta.
	res2, _ := tr.Reserve(500)
	res2.Reconcile(100)
	_, tokens = tr.Usage()
	if tokens != 800 {
		t.Errorf("tokens after negative reconcile = %d, want 800", tokens)
	}
}

func TestReconcileAfterRollDiscarded(t *testing.T) {
	tr, clock := newTestTracker(100, 10000, 1.0)

	res, _ := tr.Reserve(500)
	clock.advance(61 * time.Second)
	res.Reconcile(900)

	_, tokens := tr.Usage()
	if tokens != 0 {
		t.Errorf("tokens after stale reconcile = %d, want 0", tokens)
	}
}

func TestReconcileNeverNegative(t *testing.T) {
	tr, _ := newTestTracker(100, 10000, 1.0)

	res, _ := tr.Reserve(500)
	res.Reconcile(0)

	_, tokens := tr.Usage()
	if tokens != 0 {
		t.Errorf("tokens = %d, want 0", tokens)
	}
}

func TestConcurrentReserve(t *testing.T) {
	// Two reservations must never both land on the last slot.
	tr, _ := newTestTracker(10, 100000, 0.8)

	var wg sync.WaitGroup
	granted := make(chan struct{}, 64)

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res, wait := tr.Reserve(0); wait == 0 && res != nil {
				granted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(granted)

	count := 0
	for range granted {
		count++
	}
	if count != 8 {
		t.Errorf("granted %d reservations, want exactly 8", count)
	}
}
