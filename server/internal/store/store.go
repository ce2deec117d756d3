package store

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Entry is a stored value together with the time it was computed.
type Entry[V any] struct {
	Value     V
	UpdatedAt time.Time
}

// Store is a thread-safe in-memory map from K to V. A background goroutine
// (Run) periodically evicts entries older than the configured TTL.
// Stored values must be treated as read-only by callers.
type Store[K comparable, V any] struct {
	name string
	mu   sync.RWMutex
	data map[K]*Entry[V]
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL. name identifies the store in logs.
func New[K comparable, V any](name string, ttl time.Duration) *Store[K, V] {
	return &Store[K, V]{
		name: name,
		data: make(map[K]*Entry[V]),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put stores or replaces the value for key.
func (s *Store[K, V]) Put(key K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = &Entry[V]{Value: v, UpdatedAt: s.now()}
}

// Get returns the live value for key. Entries older than TTL are reported
// as missing even if they have not been evicted yet.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[key]
	if !ok || !e.UpdatedAt.After(s.now().Add(-s.ttl)) {
		var zero V
		return zero, false
	}
	return e.Value, true
}

// GetOrCompute returns the live value for key, computing and storing it with
// fn on a miss. fn runs without the lock held; concurrent misses for the same
// key may compute twice, which is harmless for pure fn. Errors are not stored.
func (s *Store[K, V]) GetOrCompute(key K, fn func() (V, error)) (v V, hit bool, err error) {
	if v, ok := s.Get(key); ok {
		return v, true, nil
	}
	v, err = fn()
	if err != nil {
		return v, false, err
	}
	s.Put(key, v)
	return v, false, nil
}

// Count returns the total number of entries currently held, including stale ones.
func (s *Store[K, V]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// TTL returns the configured time-to-live.
func (s *Store[K, V]) TTL() time.Duration { return s.ttl }

// Evict removes entries whose UpdatedAt is older than now minus TTL.
// It returns the number of entries removed.
func (s *Store[K, V]) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	removed := 0
	for k, e := range s.data {
		if !e.UpdatedAt.After(cutoff) {
			delete(s.data, k)
			removed++
		}
	}
	return removed
}

// Run starts the background TTL eviction loop. It ticks at half the TTL interval
// (minimum 1 second). Run blocks until ctx is cancelled.
func (s *Store[K, V]) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted stale entries", "store", s.name, "count", n)
			}
		}
	}
}
