package tenant

import (
	"context"
	"sync"
	"time"
)

// Cache stores resolved tenant metadata between requests. Implementations
// must be safe for concurrent use. This cache holds registry metadata only;
// database connections are managed elsewhere and never expire by TTL.
type Cache interface {
	// Get retrieves a tenant from cache by key.
	Get(ctx context.Context, key string) (*Tenant, bool)

	// Set stores a tenant in cache with the given TTL.
	Set(ctx context.Context, key string, t *Tenant, ttl time.Duration)

	// Delete removes a tenant from cache.
	Delete(ctx context.Context, key string)

	// Close releases any resources held by the cache.
	Close() error
}

// DefaultCacheSize bounds the default in-memory cache.
const DefaultCacheSize = 1000

// memoryCache is the default in-process cache: TTL per entry, LRU eviction
// at capacity, background sweep of expired entries.
type memoryCache struct {
	mu      sync.RWMutex
	items   map[string]cacheEntry
	lru     []string
	maxSize int
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

type cacheEntry struct {
	tenant    *Tenant
	expiresAt time.Time
}

// NewMemoryCache creates an in-memory cache with the default size limit.
func NewMemoryCache() Cache {
	return NewMemoryCacheWithSize(DefaultCacheSize)
}

// NewMemoryCacheWithSize creates an in-memory cache holding at most maxSize
// entries. Non-positive sizes fall back to the default.
func NewMemoryCacheWithSize(maxSize int) Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}

	c := &memoryCache{
		items:   make(map[string]cacheEntry),
		lru:     make([]string, 0, maxSize),
		maxSize: maxSize,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.sweep()
	return c
}

func (c *memoryCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.items[key]
	if !exists {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.items, key)
		c.removeLRU(key)
		return nil, false
	}

	c.touchLRU(key)
	return entry.tenant, true
}

func (c *memoryCache) Set(ctx context.Context, key string, t *Tenant, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		if len(c.lru) > 0 {
			oldest := c.lru[0]
			delete(c.items, oldest)
			c.lru = c.lru[1:]
		}
	}

	c.items[key] = cacheEntry{tenant: t, expiresAt: time.Now().Add(ttl)}
	c.touchLRU(key)
}

func (c *memoryCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	c.removeLRU(key)
}

// Close stops the sweep goroutine and waits for it to finish. Safe to call
// more than once.
func (c *memoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

func (c *memoryCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *memoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.items {
		if now.After(entry.expiresAt) {
			delete(c.items, key)
			c.removeLRU(key)
		}
	}
}

// touchLRU moves the key to the most-recently-used end.
func (c *memoryCache) touchLRU(key string) {
	for i, k := range c.lru {
		if k == key {
			c.lru = append(c.lru[:i], c.lru[i+1:]...)
			break
		}
	}
	c.lru = append(c.lru, key)
}

func (c *memoryCache) removeLRU(key string) {
	for i, k := range c.lru {
		if k == key {
			c.lru = append(c.lru[:i], c.lru[i+1:]...)
			return
		}
	}
}

// noopCache disables caching. Every lookup goes to the provider.
type noopCache struct{}

// NewNoopCache creates a cache that never stores anything.
func NewNoopCache() Cache {
	return noopCache{}
}

func (noopCache) Get(ctx context.Context, key string) (*Tenant, bool)             { return nil, false }
func (noopCache) Set(ctx context.Context, key string, t *Tenant, _ time.Duration) {}
func (noopCache) Delete(ctx context.Context, key string)                          {}
func (noopCache) Close() error                                                    { return nil }
