// Package cache provides the in-process TTL caches shared by the travel
// providers. Entries are process-lifetime and cleared only through Reset.
package cache

import (
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a concurrency-safe string-keyed cache whose entries expire a fixed
// duration after they were stored. Concurrent Set calls for the same key
// are last-writer-wins.
type TTL[V any] struct {
	name    string
	ttl     time.Duration
	entries *xsync.Map[string, entry[V]]
	now     func() time.Time
}

// Option configures a TTL cache
type Option func(*config)

type config struct {
	now func() time.Time
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// NewTTL creates a cache with the given name and entry lifetime
func NewTTL[V any](name string, ttl time.Duration, opts ...Option) *TTL[V] {
	cfg := config{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &TTL[V]{
		name:    name,
		ttl:     ttl,
		entries: xsync.NewMap[string, entry[V]](),
		now:     cfg.now,
	}
}

// Name returns the cache name used in logs and metrics
func (c *TTL[V]) Name() string { return c.name }

// Get returns the value stored under key if it has not expired.
// Expired entries are dropped on read.
func (c *TTL[V]) Get(key string) (V, bool) {
	e, ok := c.entries.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		c.entries.Delete(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the cache's TTL
func (c *TTL[V]) Set(key string, value V) {
	c.entries.Store(key, entry[V]{value: value, expiresAt: c.now().Add(c.ttl)})
}

// Len returns the number of stored entries, including expired ones not yet evicted
func (c *TTL[V]) Len() int {
	return c.entries.Size()
}

// Reset drops every entry. Intended for test harnesses.
func (c *TTL[V]) Reset() {
	c.entries.Clear()
}
