// Package budget paces calls against a provider's per-minute request
// and token quotas using a rolling 60 second window.
package budget

import (
	"sync"
	"time"
)

const windowLength = 60 * time.Second

// Tracker owns the rolling usage window. It never sleeps; Reserve
// returns how long the caller should wait before trying again.
type Tracker struct {
	mu                sync.Mutex
	requestsPerMinute int
	tokensPerMinute   int
	safetyMargin      float64

	windowStart  time.Time
	epoch        uint64
	requestsUsed int
	tokensUsed   int

	now func() time.Time
}

// Reservation is a claim against the window it was taken in. Reconcile
// it with the provider-reported usage once the call resolves.
type Reservation struct {
	tracker   *Tracker
	epoch     uint64
	estimated int
}

// New creates a Tracker for the given per-minute limits. The safety
// margin scales both limits down so estimation error cannot push a
// burst over the provider's real quota.
func New(requestsPerMinute, tokensPerMinute int, safetyMargin float64) *Tracker {
	t := &Tracker{
		requestsPerMinute: requestsPerMinute,
		tokensPerMinute:   tokensPerMinute,
		safetyMargin:      safetyMargin,
		now:               time.Now,
	}
	t.windowStart = t.now()
	return t
}

// Reserve claims one request and estimatedTokens against the current
// window. On success wait is zero and res is non-nil. When the window
// is full, res is nil and wait is the time remaining until the window
// resets; the caller sleeps and re-reserves.
func (t *Tracker) Reserve(estimatedTokens int) (res *Reservation, wait time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.rollLocked(now)

	allowedRequests := int(float64(t.requestsPerMinute) * t.safetyMargin)
	allowedTokens := int(float64(t.tokensPerMinute) * t.safetyMargin)

	if t.requestsUsed >= allowedRequests || t.tokensUsed+estimatedTokens > allowedTokens {
		return nil, t.windowStart.Add(windowLength).Sub(now)
	}

	t.requestsUsed++
	t.tokensUsed += estimatedTokens
	return &Reservation{tracker: t, epoch: t.epoch, estimated: estimatedTokens}, 0
}

// Usage returns the counters of the current window.
func (t *Tracker) Usage() (requests, tokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollLocked(t.now())
	return t.requestsUsed, t.tokensUsed
}

// Reconcile adjusts the window with the actual token usage reported by
// the provider. If the window has rolled since the reservation the
// delta is discarded: the stale estimate was already wiped with it.
func (r *Reservation) Reconcile(actualTokens int) {
	if r == nil {
		return
	}
	t := r.tracker
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollLocked(t.now())
	if r.epoch != t.epoch {
		return
	}

	t.tokensUsed += actualTokens - r.estimated
	if t.tokensUsed < 0 {
		t.tokensUsed = 0
	}
}

func (t *Tracker) rollLocked(now time.Time) {
	if now.Sub(t.windowStart) >= windowLength {
		t.windowStart = now
		t.epoch++
		t.requestsUsed = 0
		t.tokensUsed = 0
	}
}
