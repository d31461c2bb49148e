package offline

import (
	"strings"
	"sync"
	"time"
)

// CacheEntry is a cached response body with the time it was fetched
type CacheEntry struct {
	Body      []byte
	FetchedAt time.Time
}

// QueryCache is an in-memory store of successful read responses, keyed by
// method and URL. Entries never expire on their own; staleness is accepted
// while offline, and realtime invalidations or fresh fetches replace them.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	now     func() time.Time
}

// NewQueryCache creates an empty query cache
func NewQueryCache() *QueryCache {
	return &QueryCache{
		entries: make(map[string]CacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached entry for the key, if any
func (c *QueryCache) Get(key string) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Set stores a response body under the key, replacing any previous entry
func (c *QueryCache) Set(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = CacheEntry{Body: body, FetchedAt: c.now()}
}

// Invalidate removes the entry for the key
func (c *QueryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidatePrefix removes every entry whose key starts with the prefix.
// Realtime invalidation messages use this to drop whole resource families.
func (c *QueryCache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear drops every entry
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]CacheEntry)
}

// Len returns the number of cached entries
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
