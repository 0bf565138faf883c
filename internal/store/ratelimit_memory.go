package store

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is how many records pass between sweeps of idle keys.
const sweepEvery = 1024

// RateLimitMemoryStore is an in-memory sliding-window implementation of ratelimit.Store.
// Counters live only as long as the process.
type RateLimitMemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	windows  map[string]time.Duration
	recorded int
	now      func() time.Time
}

// RateLimitMemoryOption configures a RateLimitMemoryStore.
type RateLimitMemoryOption func(*RateLimitMemoryStore)

// WithRateLimitClock replaces time.Now, mainly for tests.
func WithRateLimitClock(now func() time.Time) RateLimitMemoryOption {
	return func(s *RateLimitMemoryStore) {
		s.now = now
	}
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore(opts ...RateLimitMemoryOption) *RateLimitMemoryStore {
	s := &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		windows:  make(map[string]time.Duration),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	valid := append(prune(s.requests[key], now.Add(-window)), now)

	s.requests[key] = valid
	s.windows[key] = window

	s.recorded++
	if s.recorded%sweepEvery == 0 {
		s.sweep(now)
	}

	return int64(len(valid)), nil
}

// Keys returns how many clients currently hold counters.
func (s *RateLimitMemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// sweep drops keys whose newest request already fell out of their window.
func (s *RateLimitMemoryStore) sweep(now time.Time) {
	for key, timestamps := range s.requests {
		if !timestamps[len(timestamps)-1].After(now.Add(-s.windows[key])) {
			delete(s.requests, key)
			delete(s.windows, key)
		}
	}
}

// prune drops timestamps at or before cutoff, reusing the slice.
func prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(timestamps) && !timestamps[i].After(cutoff) {
		i++
	}

	return timestamps[i:]
}
