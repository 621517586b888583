package fetcher

import (
	"sync"
	"time"
)

// Clock abstracts time.Now so cache expiry is testable.
type Clock interface {
	Now() time.Time
}

// DefaultTTL is how long a fetched page stays valid in the cache.
const DefaultTTL = time.Hour

// Cache stores fetched HTML by URL with a fixed TTL. Reads are concurrent;
// writes happen at most once per URL per TTL window. Entries past their TTL
// are treated as absent and removed on the next lookup. Only successful
// fetches are stored, so failed URLs are re-attempted on a later run.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   Clock
	entries map[string]cacheEntry
}

type cacheEntry struct {
	html      string
	fetchedAt time.Time
}

// NewCache builds a Cache. A non-positive ttl selects DefaultTTL.
func NewCache(ttl time.Duration, clock Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached HTML for url if present and fresh.
func (c *Cache) Get(url string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[url]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if c.clock.Now().Sub(entry.fetchedAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// refreshed the entry in the meantime.
		if cur, ok := c.entries[url]; ok && c.clock.Now().Sub(cur.fetchedAt) >= c.ttl {
			delete(c.entries, url)
		}
		c.mu.Unlock()
		return "", false
	}
	return entry.html, true
}

// Put stores the HTML for url, stamping it with the current time.
func (c *Cache) Put(url, html string) {
	c.mu.Lock()
	c.entries[url] = cacheEntry{html: html, fetchedAt: c.clock.Now()}
	c.mu.Unlock()
}

// Len reports the number of entries, including any not yet expired lazily.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
