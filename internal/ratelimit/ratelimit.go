// Package ratelimit provides approximate sliding-window request limiting
// keyed by client IP. State is best-effort: the in-memory store is
// instance-local and resets on restart, which is an accepted tradeoff for
// this system's abuse profile. A Redis-backed store exists for
// deployments that need cross-instance accuracy.
package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Store records request timestamps per key. Take prunes entries older
// than the window, then records now and returns true unless the retained
// count has already reached max.
type Store interface {
	Take(ctx context.Context, key string, now time.Time, window time.Duration, max int) (bool, error)
}

// Limiter is one independently-parameterized sliding window. Each
// limited endpoint owns its own Limiter (and therefore keyspace), so a
// client exhausting one endpoint's budget cannot affect another's.
type Limiter struct {
	store  Store
	prefix string
	window time.Duration
	max    int
	log    zerolog.Logger
	now    func() time.Time
}

func New(store Store, prefix string, window time.Duration, max int, log zerolog.Logger) *Limiter {
	return &Limiter{
		store:  store,
		prefix: prefix,
		window: window,
		max:    max,
		log:    log,
		now:    time.Now,
	}
}

// WithClock substitutes the time source, for deterministic tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow reports whether a request under key may proceed, recording the
// request timestamp when it may. Store failures fail open: the limiter
// is an abuse brake, not a correctness gate.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	ok, err := l.store.Take(ctx, l.prefix+":"+key, l.now(), l.window, l.max)
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("rate limit store failed, allowing request")
		return true
	}
	return ok
}
