// Package cache holds small in-process caches with per-entry expiry.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache maps keys to values that expire after their TTL. Expired entries
// are dropped when read and swept in bulk at most once per sweep interval.
type TTLCache[K comparable, V any] struct {
	mu         sync.RWMutex
	items      map[K]entry[V]
	now        func() time.Time
	sweepEvery time.Duration
	lastSweep  time.Time
}

// NewTTLCache builds an empty cache. A zero sweepEvery sweeps on every Set.
func NewTTLCache[K comparable, V any](sweepEvery time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		items:      make(map[K]entry[V]),
		now:        time.Now,
		sweepEvery: sweepEvery,
	}
}

// SetClock replaces the time source.
func (c *TTLCache[K, V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Get returns the value for key unless it is missing or expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	c.mu.RLock()
	e, ok := c.items[key]
	now := c.now()
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if e.expired(now) {
		c.Delete(key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key. A ttl of zero or less never expires.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}
	c.items[key] = entry[V]{value: value, expiresAt: expiresAt}

	if now.Sub(c.lastSweep) >= c.sweepEvery {
		for k, e := range c.items {
			if e.expired(now) {
				delete(c.items, k)
			}
		}
		c.lastSweep = now
	}
}

func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len counts stored entries, including expired ones not yet swept.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}
