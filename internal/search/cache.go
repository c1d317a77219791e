package search

import (
	"container/list"
	"sync"

	"github.com/hyperjump/semspace/internal/models"
)

// ResultCache is an LRU cache of search responses keyed by snapshot fingerprint and query.
// Cached responses are shared between callers and must be treated as read-only.
type ResultCache struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
	hits     uint64
	misses   uint64
}

type cacheEntry struct {
	key   string
	value *models.SearchResponse
}

// NewResultCache creates a new cache with the given capacity. A non-positive capacity
// returns nil, which callers treat as caching disabled.
func NewResultCache(capacity int) *ResultCache {
	if capacity <= 0 {
		return nil
	}
	return &ResultCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the cached response for key if present.
func (c *ResultCache) Get(key string) (*models.SearchResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		c.hits++
		return elem.Value.(*cacheEntry).value, true
	}
	c.misses++
	return nil, false
}

// Set stores the response for key, evicting the oldest entry if at capacity.
func (c *ResultCache) Set(key string, value *models.SearchResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	entry := &cacheEntry{key: key, value: value}
	elem := c.lru.PushFront(entry)
	c.cache[key] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of cached responses.
func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns hit and miss counts.
func (c *ResultCache) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
