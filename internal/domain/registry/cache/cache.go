package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

type entry[V any] struct {
	value   V
	present bool
}

// Cache is a capacity-bounded lookup cache. It remembers definite results
// only: a value for a key that exists, or an absent marker for a key the
// backing store reported as missing. Transient lookup failures must never be
// inserted. A nil or disabled cache misses on every Get.
type Cache[K comparable, V any] struct {
	lru *lru.Cache[K, entry[V]]
}

// New builds a cache holding at most max(minCapacity, maxCapacity) entries,
// evicting least-recently-used entries under capacity pressure. A
// maxCapacity of zero or below disables caching entirely.
func New[K comparable, V any](minCapacity, maxCapacity int) *Cache[K, V] {
	if maxCapacity <= 0 {
		return &Cache[K, V]{}
	}
	capacity := maxCapacity
	if minCapacity > capacity {
		capacity = minCapacity
	}
	inner, err := lru.New[K, entry[V]](capacity)
	if err != nil {
		// lru.New only fails for non-positive sizes, excluded above.
		return &Cache[K, V]{}
	}
	return &Cache[K, V]{lru: inner}
}

// Enabled reports whether the cache stores anything at all.
func (c *Cache[K, V]) Enabled() bool {
	return c != nil && c.lru != nil
}

// Get returns the cached value for key. The second result reports whether
// the backing record exists (false for a cached absent marker); the third
// reports whether the cache held an entry for the key at all.
func (c *Cache[K, V]) Get(key K) (V, bool, bool) {
	var zero V
	if !c.Enabled() {
		return zero, false, false
	}
	cached, ok := c.lru.Get(key)
	if !ok {
		return zero, false, false
	}
	return cached.value, cached.present, true
}

// Put records a definite positive lookup result.
func (c *Cache[K, V]) Put(key K, value V) {
	if !c.Enabled() {
		return
	}
	c.lru.Add(key, entry[V]{value: value, present: true})
}

// PutAbsent records a definite negative lookup result.
func (c *Cache[K, V]) PutAbsent(key K) {
	if !c.Enabled() {
		return
	}
	c.lru.Add(key, entry[V]{})
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	if !c.Enabled() {
		return 0
	}
	return c.lru.Len()
}
