package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(window time.Duration, max int) (*Limiter, *fakeClock) {
	clock := newFakeClock()
	limiter := New(NewMemoryStore(), "test", window, max, zerolog.Nop()).WithClock(clock.Now)
	return limiter, clock
}

func TestLimiter_RejectsAboveMax(t *testing.T) {
	t.Parallel()
	limiter, _ := newTestLimiter(time.Hour, 10)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.True(t, limiter.Allow(ctx, "203.0.113.7"), "call %d should be allowed", i+1)
	}
	require.False(t, limiter.Allow(ctx, "203.0.113.7"), "11th call within window should be rejected")
}

func TestLimiter_RejectionDoesNotRecord(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	clock := newFakeClock()
	limiter := New(store, "test", time.Hour, 2, zerolog.Nop()).WithClock(clock.Now)
	ctx := context.Background()

	limiter.Allow(ctx, "ip")
	limiter.Allow(ctx, "ip")
	limiter.Allow(ctx, "ip")
	limiter.Allow(ctx, "ip")

	require.Equal(t, 2, store.Len("test:ip"), "rejected calls must not extend the window")
}

func TestLimiter_WindowSlides(t *testing.T) {
	t.Parallel()
	limiter, clock := newTestLimiter(time.Hour, 1)
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "ip"))
	require.False(t, limiter.Allow(ctx, "ip"))

	clock.Advance(time.Hour + time.Second)
	require.True(t, limiter.Allow(ctx, "ip"), "call after window elapses should be allowed")
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	t.Parallel()
	limiter, _ := newTestLimiter(time.Hour, 1)
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "203.0.113.7"))
	require.False(t, limiter.Allow(ctx, "203.0.113.7"))
	require.True(t, limiter.Allow(ctx, "198.51.100.9"), "a different IP has its own budget")
}

func TestLimiter_PrefixesSeparateKeyspaces(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	clock := newFakeClock()
	issuance := New(store, "issue", time.Hour, 1, zerolog.Nop()).WithClock(clock.Now)
	business := New(store, "api", time.Hour, 1, zerolog.Nop()).WithClock(clock.Now)
	ctx := context.Background()

	require.True(t, issuance.Allow(ctx, "ip"))
	require.False(t, issuance.Allow(ctx, "ip"))
	require.True(t, business.Allow(ctx, "ip"), "exhausting issuance must not affect business endpoints")
}

func TestLimiter_ConcurrentSameKey(t *testing.T) {
	t.Parallel()
	limiter, _ := newTestLimiter(time.Hour, 50)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for n := 0; n < 100; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow(ctx, "ip") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 50, allowed, "exactly max calls may pass under concurrency")
}

type failingStore struct{}

func (failingStore) Take(context.Context, string, time.Time, time.Duration, int) (bool, error) {
	return false, context.DeadlineExceeded
}

func TestLimiter_FailsOpenOnStoreError(t *testing.T) {
	t.Parallel()
	limiter := New(failingStore{}, "test", time.Hour, 1, zerolog.Nop())
	require.True(t, limiter.Allow(context.Background(), "ip"))
}
