package assets

import (
	"sync"
)

type entry[T any] struct {
	value T
	refs  int
}

// Cache shares loaded resources by key and counts their users. A value is
// loaded on first Acquire and released once its last user lets go.
type Cache[T any] struct {
	entries map[string]*entry[T]
	release func(T)
	mu      sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a cache. release is called when a value's reference
// count drops to zero; it may be nil.
func NewCache[T any](release func(T)) *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]*entry[T]),
		release: release,
	}
}

// Acquire returns the cached value for key, calling load on a miss. Every
// successful Acquire must be paired with a Release.
func (c *Cache[T]) Acquire(key string, load func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.refs++
		c.hits++
		return e.value, nil
	}
	c.misses++

	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	c.entries[key] = &entry[T]{value: v, refs: 1}
	return v, nil
}

// Release drops one reference to key. It reports whether the value was
// freed.
func (c *Cache[T]) Release(key string) bool {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return false
	}
	e.refs--
	if e.refs > 0 {
		c.mu.Unlock()
		return false
	}
	delete(c.entries, key)
	c.mu.Unlock()

	if c.release != nil {
		c.release(e.value)
	}
	return true
}

// Refs returns the reference count of key, 0 when absent.
func (c *Cache[T]) Refs(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of cached values.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear releases every value regardless of its reference count.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*entry[T])
	c.hits = 0
	c.misses = 0
	c.mu.Unlock()

	if c.release == nil {
		return
	}
	for _, e := range entries {
		c.release(e.value)
	}
}

// Stats returns cache statistics.
func (c *Cache[T]) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
