package schema

import (
	"reflect"
	"sync"
)

// Cache holds resolved schemas keyed by struct type. It is read-mostly:
// entries are added on first resolution and never mutated afterwards.
type Cache struct {
	mu      sync.RWMutex
	entries map[reflect.Type]*Schema
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[reflect.Type]*Schema)}
}

// Load returns the cached schema for t.
func (c *Cache) Load(t reflect.Type) (*Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[t]
	return s, ok
}

// Store caches s for t unless another resolution got there first, and
// returns the instance that is cached.
func (c *Cache) Store(t reflect.Type, s *Schema) *Schema {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[t]; ok {
		return existing
	}
	c.entries[t] = s
	return s
}

// Len returns the number of cached schemas.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops every cached schema.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[reflect.Type]*Schema)
}
