// Package janitor runs periodic housekeeping: purging expired account
// tokens and forgetting idle rate-limit buckets.
package janitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hongminglow/itarix-api/internal/logging"
)

// DefaultIdle is how long a client may stay silent before its rate-limit
// bucket is dropped.
const DefaultIdle = 30 * time.Minute

// TokenPurger clears expired refresh and reset tokens.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// LimiterCleaner forgets idle rate-limit clients.
type LimiterCleaner interface {
	Cleanup(maxIdle time.Duration) int
}

// Janitor schedules housekeeping on a cron expression.
type Janitor struct {
	cron    *cron.Cron
	purger  TokenPurger
	limiter LimiterCleaner
	log     logging.Logger
	now     func() time.Time
	idle    time.Duration
	onPurge func(n int64)
	timeout time.Duration
}

// Option customises a Janitor.
type Option func(*Janitor)

// WithLimiter also cleans the given rate limiter on every run.
func WithLimiter(l LimiterCleaner, maxIdle time.Duration) Option {
	return func(j *Janitor) {
		j.limiter = l
		j.idle = maxIdle
	}
}

// WithClock overrides the time used to decide expiry.
func WithClock(now func() time.Time) Option {
	return func(j *Janitor) { j.now = now }
}

// WithPurgeObserver is called with the number of tokens each run cleared.
func WithPurgeObserver(fn func(n int64)) Option {
	return func(j *Janitor) { j.onPurge = fn }
}

// New parses schedule (standard five-field cron or a descriptor such as
// "@every 1h") and registers the housekeeping job.
func New(schedule string, purger TokenPurger, log logging.Logger, opts ...Option) (*Janitor, error) {
	j := &Janitor{
		cron:    cron.New(),
		purger:  purger,
		log:     log.With("component", "janitor"),
		now:     time.Now,
		idle:    DefaultIdle,
		onPurge: func(int64) {},
		timeout: time.Minute,
	}
	for _, opt := range opts {
		opt(j)
	}
	if _, err := j.cron.AddFunc(schedule, j.run); err != nil {
		return nil, fmt.Errorf("janitor schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start runs the scheduler in the background.
func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts the scheduler and waits for a running job, or for ctx.
func (j *Janitor) Stop(ctx context.Context) error {
	done := j.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs one housekeeping pass.
func (j *Janitor) RunOnce(ctx context.Context) error {
	n, err := j.purger.PurgeExpiredTokens(ctx, j.now())
	if err != nil {
		return fmt.Errorf("purge expired tokens: %w", err)
	}
	j.onPurge(n)

	removed := 0
	if j.limiter != nil {
		removed = j.limiter.Cleanup(j.idle)
	}
	j.log.Info(ctx, "housekeeping finished", "purged_tokens", n, "idle_clients_removed", removed)
	return nil
}

func (j *Janitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	if err := j.RunOnce(ctx); err != nil {
		j.log.Error(ctx, "housekeeping failed", "error", err)
	}
}
