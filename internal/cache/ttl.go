package cache

import (
	"sync"
	"time"
)

// TTLCache is a bounded in-memory cache with per-entry expiry. The
// caches in this app hold a handful of rendered partials at most, so
// when the bound is exceeded eviction scans for the least recently
// touched entry instead of maintaining an access list.
type TTLCache[T any] struct {
	mu      sync.Mutex
	bound   int
	ttl     time.Duration
	entries map[string]*ttlEntry[T]
}

type ttlEntry[T any] struct {
	value     T
	expiresAt time.Time
	touched   time.Time
}

// NewTTL returns a cache holding at most bound entries, each for at
// most ttl.
func NewTTL[T any](bound int, ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{
		bound:   bound,
		ttl:     ttl,
		entries: make(map[string]*ttlEntry[T]),
	}
}

// Get returns the cached value when present and not expired. A hit
// refreshes the entry's eviction priority, not its expiry.
func (c *TTLCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	now := time.Now()
	if now.After(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	e.touched = now
	return e.value, true
}

// Set stores value under key, restarting its TTL.
func (c *TTLCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.entries[key] = &ttlEntry[T]{
		value:     value,
		expiresAt: now.Add(c.ttl),
		touched:   now,
	}
	if len(c.entries) > c.bound {
		c.evictColdest()
	}
}

// Delete drops key if present. Handlers call it to invalidate a
// partial after a write.
func (c *TTLCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// evictColdest removes the entry with the oldest touch time. Callers
// hold the lock.
func (c *TTLCache[T]) evictColdest() {
	var coldest string
	var at time.Time
	for key, e := range c.entries {
		if coldest == "" || e.touched.Before(at) {
			coldest = key
			at = e.touched
		}
	}
	if coldest != "" {
		delete(c.entries, coldest)
	}
}

// CleanExpired drops every expired entry and reports how many went.
func (c *TTLCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Size reports the live entry count, expired entries included until
// the next sweep.
func (c *TTLCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
