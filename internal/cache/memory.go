// Package cache holds the in-memory response cache used by the Web API client.
package cache

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"
)

// Memory is an in-memory cache implementation using otter.
// Entries expire a fixed TTL after they were written.
type Memory[T any] struct {
	cache   *otter.Cache[string, T]
	ttl     time.Duration
	counter *stats.Counter
}

// NewMemory creates a new in-memory cache with the specified TTL and max size.
// A maxSize of 0 leaves the cache unbounded; a negative one is rejected.
func NewMemory[T any](ttl time.Duration, maxSize int) (*Memory[T], error) {
	counter := stats.NewCounter()
	cache, err := otter.New(&otter.Options[string, T]{
		MaximumSize:      maxSize,
		StatsRecorder:    counter,
		ExpiryCalculator: otter.ExpiryCreating[string, T](ttl),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &Memory[T]{
		cache:   cache,
		ttl:     ttl,
		counter: counter,
	}, nil
}

// Get retrieves a live entry from the cache.
func (m *Memory[T]) Get(ctx context.Context, key string) (T, bool, error) {
	value, ok := m.cache.GetIfPresent(key)
	if !ok {
		var zero T
		return zero, false, nil
	}

	return value, true, nil
}

// Set stores a value, replacing any previous entry and restarting its TTL.
func (m *Memory[T]) Set(ctx context.Context, key string, value T) error {
	m.cache.Set(key, value)
	return nil
}

// Invalidate removes an entry from the cache.
func (m *Memory[T]) Invalidate(ctx context.Context, key string) error {
	m.cache.Invalidate(key)
	return nil
}

// TTL returns the lifetime of entries.
func (m *Memory[T]) TTL() time.Duration {
	return m.ttl
}

// Stats returns hit and miss counts since the cache was created.
func (m *Memory[T]) Stats() (hits, misses uint64) {
	s := m.counter.Snapshot()
	return s.Hits, s.Misses
}

// Key builds the cache key of a request from its URL and query parameters.
//
// Parameters are encoded in sorted key order so two requests with the same
// parameter set share a key regardless of insertion order.
func Key(rawURL string, params url.Values) string {
	if len(params) == 0 {
		return rawURL
	}
	return rawURL + "?" + params.Encode()
}
