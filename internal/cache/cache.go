// Package cache provides the bounded, process-local lookup cache owned by the
// stock ledger, the part request registry and the user directory.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is used when a non-positive size is requested.
const DefaultSize = 1024

// Generation identifies the state of a cache between evictions. A value read
// from storage is only cached if no eviction happened since its Generation
// was taken, so a reader racing a delete cannot put the stale row back.
type Generation uint64

// Cache is a bounded LRU map. Values are replaced wholesale and never merged.
type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	gen   Generation
	store *lru.Cache[K, V]
}

// New creates a cache holding at most size entries.
func New[K comparable, V any](size int) *Cache[K, V] {
	if size <= 0 {
		size = DefaultSize
	}
	// only fails on a non-positive size
	store, _ := lru.New[K, V](size)
	return &Cache[K, V]{store: store}
}

// Get returns the cached value for key and marks it recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	return c.store.Get(key)
}

// Generation returns the current generation. Take it before reading the
// value that will be passed to SetSince.
func (c *Cache[K, V]) Generation() Generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetSince stores value under key unless an eviction happened after gen was
// taken. It reports whether the value was stored.
func (c *Cache[K, V]) SetSince(gen Generation, key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}
	c.store.Add(key, value)
	return true
}

// Delete evicts key.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.store.Remove(key)
}

// DeleteFunc evicts every entry whose value matches fn.
func (c *Cache[K, V]) DeleteFunc(fn func(V) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	for _, key := range c.store.Keys() {
		if value, ok := c.store.Peek(key); ok && fn(value) {
			c.store.Remove(key)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return c.store.Len()
}
