package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default instance-local Store: a mutex-guarded map
// of per-key timestamp lists, pruned lazily on each check. The lock
// covers the whole filter-then-append sequence, which would otherwise be
// a check-then-act race between in-flight requests sharing a key.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]time.Time),
	}
}

func (s *MemoryStore) Take(_ context.Context, key string, now time.Time, window time.Duration, max int) (bool, error) {
	cutoff := now.Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	timestamps := s.entries[key]
	retained := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			retained = append(retained, ts)
		}
	}

	if len(retained) >= max {
		s.entries[key] = retained
		return false, nil
	}

	s.entries[key] = append(retained, now)
	return true, nil
}

// Len returns the number of live timestamps for key, for tests.
func (s *MemoryStore) Len(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries[key])
}
