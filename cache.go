package sietch

import (
	"sync"
	"time"
)

// cacheKey uniquely identifies a permission check. Exact-match only;
// partial matches are not supported.
type cacheKey struct {
	SubjectType     ObjectType
	SubjectID       string
	SubjectRelation Relation
	Relation        Relation
	ObjectType      ObjectType
	ObjectID        string
}

// cacheEntry stores the result of a permission check.
type cacheEntry struct {
	allowed   bool
	err       error
	expiresAt time.Time // zero means no expiry
}

// Cache stores check results. It must be safe for concurrent use from
// multiple goroutines.
type Cache interface {
	// Get retrieves a cached check result.
	// If ok is false, the entry doesn't exist or is expired.
	Get(subject Subject, relation Relation, object Object) (allowed bool, err error, ok bool)

	// Set stores a check result.
	Set(subject Subject, relation Relation, object Object, allowed bool, err error)
}

// MemoryCache is the default in-memory cache with optional TTL. It grows
// unbounded within its TTL window; long-running processes with large
// permission sets should set a TTL or clear periodically.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[cacheKey]cacheEntry
	ttl   time.Duration // 0 means no expiry
}

// CacheOption configures a MemoryCache.
type CacheOption func(*MemoryCache)

// WithTTL sets the time-to-live for cache entries. Entries older than TTL
// are re-checked. A TTL of 0 (default) means entries never expire within
// the cache's lifetime. Choose short TTLs for volatile permissions.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *MemoryCache) {
		c.ttl = ttl
	}
}

// NewCache creates a new check-result cache. The cache is scoped to a
// single process; for distributed deployments implement Cache over a
// shared store.
func NewCache(opts ...CacheOption) *MemoryCache {
	c := &MemoryCache{
		items: make(map[cacheKey]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a cached check result.
func (c *MemoryCache) Get(subject Subject, relation Relation, object Object) (bool, error, bool) {
	key := keyFor(subject, relation, object)

	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil, false
	}

	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return false, nil, false
	}

	return entry.allowed, entry.err, true
}

// Set stores a check result.
func (c *MemoryCache) Set(subject Subject, relation Relation, object Object, allowed bool, err error) {
	entry := cacheEntry{
		allowed: allowed,
		err:     err,
	}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	c.items[keyFor(subject, relation, object)] = entry
	c.mu.Unlock()
}

// Size returns the number of cached entries.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear removes all entries. Call after bulk permission updates or model
// reinstalls.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.items = make(map[cacheKey]cacheEntry)
	c.mu.Unlock()
}

func keyFor(subject Subject, relation Relation, object Object) cacheKey {
	return cacheKey{
		SubjectType:     subject.Type,
		SubjectID:       subject.ID,
		SubjectRelation: subject.Relation,
		Relation:        relation,
		ObjectType:      object.Type,
		ObjectID:        object.ID,
	}
}

var _ Cache = (*MemoryCache)(nil)
