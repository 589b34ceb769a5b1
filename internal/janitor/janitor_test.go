package janitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/storage/memory"
)

type fakeLimiter struct {
	calls int
	idle  time.Duration
}

func (f *fakeLimiter) Cleanup(maxIdle time.Duration) int {
	f.calls++
	f.idle = maxIdle
	return 3
}

type failingPurger struct{}

func (failingPurger) PurgeExpiredTokens(context.Context, time.Time) (int64, error) {
	return 0, errors.New("db down")
}

func TestRunOncePurgesExpiredTokens(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store := memory.New()

	p, err := store.CreatePerson(ctx, models.Person{Name: "ada", Email: "ada@example.com"})
	require.NoError(t, err)
	acc, err := store.CreateAccount(ctx, models.Account{PersonID: p.ID, Username: "ada", PasswordHash: "x"})
	require.NoError(t, err)
	require.NoError(t, store.SetRefreshToken(ctx, acc.ID, "stale", now.Add(-time.Hour)))

	limiter := &fakeLimiter{}
	var purged int64
	j, err := New("@every 1h", store, logging.NewNop(),
		WithClock(func() time.Time { return now }),
		WithLimiter(limiter, 5*time.Minute),
		WithPurgeObserver(func(n int64) { purged += n }),
	)
	require.NoError(t, err)

	require.NoError(t, j.RunOnce(ctx))
	assert.Equal(t, int64(1), purged)
	assert.Equal(t, 1, limiter.calls)
	assert.Equal(t, 5*time.Minute, limiter.idle)

	_, err = store.ConsumeRefreshToken(ctx, "stale", now.Add(-2*time.Hour))
	assert.Error(t, err)
}

func TestRunOnceReportsPurgeFailure(t *testing.T) {
	limiter := &fakeLimiter{}
	j, err := New("@hourly", failingPurger{}, logging.NewNop(), WithLimiter(limiter, time.Minute))
	require.NoError(t, err)

	assert.ErrorContains(t, j.RunOnce(context.Background()), "db down")
	assert.Zero(t, limiter.calls)
}

func TestNewRejectsBadSchedule(t *testing.T) {
	_, err := New("every now and then", failingPurger{}, logging.NewNop())
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	j, err := New("@every 1h", failingPurger{}, logging.NewNop())
	require.NoError(t, err)
	j.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, j.Stop(ctx))
}
