// Package retry wraps fallible provider calls with budget reservation
// and bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"video-extract/internal/apierr"
	"video-extract/internal/budget"
	"video-extract/internal/logger"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second

	// DefaultMaxStalls bounds consecutive full-window waits for a single
	// attempt, so a misconfigured budget cannot spin forever.
	DefaultMaxStalls = 5
)

// ErrBudgetStalled is returned when the budget window never opens up.
var ErrBudgetStalled = errors.New("rate budget stalled")

// Config holds retry settings.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxStalls   int
	IsRetryable func(error) bool
}

// DefaultConfig returns standard retry settings.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxStalls:   DefaultMaxStalls,
		IsRetryable: apierr.IsRetryable,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.MaxStalls <= 0 {
		c.MaxStalls = DefaultMaxStalls
	}
	if c.IsRetryable == nil {
		c.IsRetryable = apierr.IsRetryable
	}
	return c
}

// Coordinator sequences budget reservation, the call itself, usage
// reconciliation and backoff between attempts.
type Coordinator struct {
	cfg     Config
	tracker *budget.Tracker
	logger  logger.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Coordinator backed by the given budget tracker.
func New(cfg Config, tracker *budget.Tracker, log logger.Logger) *Coordinator {
	return &Coordinator{
		cfg:     cfg.withDefaults(),
		tracker: tracker,
		logger:  log,
		sleep:   sleepCtx,
	}
}

// Action performs one attempt. It returns the result and the actual
// token usage reported by the provider (zero when the call failed).
type Action[T any] func(ctx context.Context) (T, int, error)

// Execute runs fn until it succeeds, fails terminally, or attempts are
// exhausted. Each attempt holds a budget reservation that is reconciled
// with the provider-reported usage afterwards.
func Execute[T any](ctx context.Context, c *Coordinator, estimatedTokens int, fn Action[T]) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		res, err := c.reserve(ctx, estimatedTokens)
		if err != nil {
			return zero, err
		}

		value, actualTokens, err := fn(ctx)
		res.Reconcile(actualTokens)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if !c.cfg.IsRetryable(err) || attempt == c.cfg.MaxAttempts {
			return zero, lastErr
		}

		delay := c.backoffDelay(attempt)
		if hint := apierr.RetryAfter(err); hint > delay {
			delay = hint
		}
		c.logger.Debug(ctx, "attempt %d/%d failed, retrying in %s: %v",
			attempt, c.cfg.MaxAttempts, delay, err)

		if err := c.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

// reserve loops until the budget grants a slot, sleeping out full
// windows, up to MaxStalls consecutive stalls.
func (c *Coordinator) reserve(ctx context.Context, estimatedTokens int) (*budget.Reservation, error) {
	for stall := 0; ; stall++ {
		res, wait := c.tracker.Reserve(estimatedTokens)
		if wait == 0 {
			return res, nil
		}
		if stall+1 >= c.cfg.MaxStalls {
			return nil, fmt.Errorf("%w after %d waits of the full window", ErrBudgetStalled, stall+1)
		}

		c.logger.Info(ctx, "rate budget full, waiting %.1fs for window reset", wait.Seconds())
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// backoffDelay is base * 2^(attempt-1) plus jitter in [0, base).
func (c *Coordinator) backoffDelay(attempt int) time.Duration {
	delay := c.cfg.BaseDelay << min(attempt-1, 6)
	jitter := time.Duration(rand.Float64() * float64(c.cfg.BaseDelay))
	return delay + jitter
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
