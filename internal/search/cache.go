package search

import (
	"strings"
	"sync"
	"time"

	"vaultsearch/internal/content"
)

// Cache TTL defaults. Project and technology records change rarely, so their
// entries live for hours; vault notes change often, so anything that can see
// a note gets the short TTL.
const (
	DefaultTTL = 6 * time.Hour
	NoteTTL    = 10 * time.Minute
)

// Cache memoizes complete query responses by normalized query text and
// filter. It is opportunistic: a miss always falls through to the engine and
// clearing it has no correctness impact.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	defaultTTL time.Duration
	noteTTL    time.Duration

	now func() time.Time // replaceable in tests
}

type cacheEntry struct {
	results   []Result
	expiresAt time.Time
}

// NewCache creates a result cache. Non-positive TTLs fall back to the
// package defaults.
func NewCache(defaultTTL, noteTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if noteTTL <= 0 {
		noteTTL = NoteTTL
	}
	return &Cache{
		entries:    make(map[string]cacheEntry),
		defaultTTL: defaultTTL,
		noteTTL:    noteTTL,
		now:        time.Now,
	}
}

// Key normalizes query text and composes the cache key with the filter, so
// "react" unfiltered and "react" filtered to technology are distinct.
func Key(text string, filter content.Type) string {
	return strings.ToLower(strings.TrimSpace(text)) + "|" + string(filter)
}

// TTLFor picks the entry lifetime for a filter. An unfiltered query can
// surface notes, so it shares the short note TTL.
func (c *Cache) TTLFor(filter content.Type) time.Duration {
	switch filter {
	case content.TypeProject, content.TypeTechnology:
		return c.defaultTTL
	default:
		return c.noteTTL
	}
}

// Get returns the cached results for key, if present and unexpired.
func (c *Cache) Get(key string) ([]Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.results, true
}

// Put stores results under key for ttl.
func (c *Cache) Put(key string, results []Result, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{results: results, expiresAt: c.now().Add(ttl)}
}

// Clear drops every entry. Safe at any time; only latency is affected.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
