// util/cache.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ExpiringCache memoizes the result of an expensive, pure computation that
// is keyed by some comparable value and whose result goes stale after a
// fixed TTL. The engine uses it in CommandExecutor to memoize the
// published approach resolved for a given runway and approach type.
type ExpiringCache[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
}

// NewExpiringCache returns a cache holding up to size entries, each valid
// for ttl after insertion.
func NewExpiringCache[K comparable, V any](size int, ttl time.Duration) *ExpiringCache[K, V] {
	return &ExpiringCache[K, V]{
		lru: expirable.NewLRU[K, V](size, nil, ttl),
	}
}

// Get returns the cached value for key, if present and unexpired.
func (c *ExpiringCache[K, V]) Get(key K) (V, bool) {
	return c.lru.Get(key)
}

// Add inserts or refreshes the cached value for key.
func (c *ExpiringCache[K, V]) Add(key K, value V) {
	c.lru.Add(key, value)
}

// GetOrCompute returns the cached value for key, computing and caching it
// via compute if it is not already present.
func (c *ExpiringCache[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := c.lru.Get(key); ok {
		return v
	}
	v := compute()
	c.lru.Add(key, v)
	return v
}

// Purge empties the cache.
func (c *ExpiringCache[K, V]) Purge() {
	c.lru.Purge()
}

// Len returns the number of entries currently cached.
func (c *ExpiringCache[K, V]) Len() int {
	return c.lru.Len()
}
