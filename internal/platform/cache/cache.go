// Package cache provides the in-memory result cache used to memoize analyzer
// results across pipeline runs. Entries expire after a per-entry TTL and the
// oldest-inserted entries are evicted first once the size bound is exceeded.
package cache

import (
	"container/list"
	"sync"
	"time"

	"trustlens/internal/core/domain"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 1000

// Store defines what the orchestrator needs from a result cache.
type Store interface {
	// Get returns the result stored under key.
	// Missing and logically expired entries are reported as absent.
	Get(key string) (domain.AnalyzerResult, bool)

	// Put stores result under key for ttl, replacing any previous entry.
	// If ttl is 0, the entry never expires.
	Put(key string, result domain.AnalyzerResult, ttl time.Duration)
}

// entry represents a cached result with metadata
type entry struct {
	key       string
	result    domain.AnalyzerResult
	storedAt  time.Time
	expiresAt time.Time
	element   *list.Element // position in insertion order
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// ResultCache is a fingerprint-keyed, TTL-expiring store of analyzer results.
// It is safe for concurrent use.
type ResultCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*entry
	order    *list.List // front = oldest insertion
	now      func() time.Time

	hits   uint64
	misses uint64
}

// Option configures a ResultCache.
type Option func(*ResultCache)

// WithClock overrides the time source (used by tests).
func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewResultCache creates a cache holding at most capacity entries.
//
// Example:
//
//	results := cache.NewResultCache(500)
//	results.Put(key, res, 10*time.Minute)
func NewResultCache(capacity int, opts ...Option) *ResultCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	c := &ResultCache{
		capacity: capacity,
		items:    make(map[string]*entry),
		order:    list.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a copy of the result stored under key.
// Expired entries are removed on read and reported as absent.
func (c *ResultCache) Get(key string) (domain.AnalyzerResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.items[key]
	if !exists {
		c.misses++
		return domain.AnalyzerResult{}, false
	}

	if e.expired(c.now()) {
		c.deleteEntry(e)
		c.misses++
		return domain.AnalyzerResult{}, false
	}

	c.hits++
	return e.result.Clone(), true
}

// Put stores a copy of result under key.
// An existing entry is replaced and counts as a fresh insertion.
func (c *ResultCache) Put(key string, result domain.AnalyzerResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	if existing, exists := c.items[key]; exists {
		c.deleteEntry(existing)
	}

	e := &entry{
		key:       key,
		result:    result.Clone(),
		storedAt:  now,
		expiresAt: expiresAt,
	}
	e.element = c.order.PushBack(e)
	c.items[key] = e

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Delete removes a value from the cache.
func (c *ResultCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, exists := c.items[key]; exists {
		c.deleteEntry(e)
	}
}

// Clear removes all values from the cache.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry)
	c.order.Init()
}

// Size returns the number of physically stored entries, expired or not.
func (c *ResultCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *ResultCache) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// SetCapacity changes the size bound, evicting oldest entries if needed.
func (c *ResultCache) SetCapacity(capacity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if capacity <= 0 {
		capacity = 1
	}
	c.capacity = capacity

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Stats returns hit/miss counters.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:  len(c.items),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}

// Stats contains cache counters.
type Stats struct {
	Entries  int
	Capacity int
	Hits     uint64
	Misses   uint64
}

// CleanExpired removes all expired entries and returns how many were removed.
func (c *ResultCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, e := range c.items {
		if e.expired(now) {
			c.deleteEntry(e)
			removed++
		}
	}
	return removed
}

// Keys returns the keys of live entries in insertion order.
func (c *ResultCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	keys := make([]string, 0, len(c.items))
	for el := c.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		if e.expired(now) {
			continue
		}
		keys = append(keys, e.key)
	}
	return keys
}

// evictOldest removes the oldest-inserted entry.
// Must be called with c.mu held.
func (c *ResultCache) evictOldest() {
	if el := c.order.Front(); el != nil {
		c.deleteEntry(el.Value.(*entry))
	}
}

// deleteEntry removes an entry from the cache.
// Must be called with c.mu held.
func (c *ResultCache) deleteEntry(e *entry) {
	delete(c.items, e.key)
	c.order.Remove(e.element)
}

// StartCleanupWorker starts a background goroutine that periodically
// removes expired entries. Returns a function that stops the worker.
//
// Example:
//
//	stop := results.StartCleanupWorker(5 * time.Minute)
//	defer stop()
func (c *ResultCache) StartCleanupWorker(interval time.Duration) func() {
	if interval <= 0 {
		return func() {}
	}

	stopChan := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-ticker.C:
				c.CleanExpired()
			case <-stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stopChan) })
	}
}
