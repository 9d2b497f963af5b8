package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Budgets are per instance; behind a
// load balancer each replica counts independently, use RedisStore for a
// shared budget.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	count     int
	windowEnd time.Time
}

type MemoryStoreOption func(*MemoryStore)

// WithMemoryStoreClock overrides the time source, used in tests.
func WithMemoryStoreClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	store := &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *MemoryStore) Admit(_ context.Context, key string, limit int, window time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]

	if !ok || now.After(b.windowEnd) {
		s.buckets[key] = &bucket{
			count:     1,
			windowEnd: now.Add(window),
		}
		return nil
	}

	if b.count >= limit {
		return ErrRateLimitExceeded
	}

	b.count++
	return nil
}

// Prune drops buckets whose window has already elapsed. Call it
// periodically on long-lived processes to bound memory growth.
func (s *MemoryStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, b := range s.buckets {
		if now.After(b.windowEnd) {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}
