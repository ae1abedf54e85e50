package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	doc      map[string]interface{}
	deadline time.Time
}

// InMemoryCache is a process-local DocumentCache. It is the default when no
// Redis address is configured and the workhorse for tests.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewInMemoryCache creates an empty in-memory cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *InMemoryCache) Get(_ context.Context, key string) (map[string]interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().After(entry.deadline) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	// hand out a copy so callers cannot mutate the cached document
	doc := make(map[string]interface{}, len(entry.doc))
	for k, v := range entry.doc {
		doc[k] = v
	}
	return doc, true
}

func (c *InMemoryCache) Set(_ context.Context, key string, doc map[string]interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	stored := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		stored[k] = v
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{doc: stored, deadline: c.now().Add(ttl)}
	c.mu.Unlock()
}

func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
