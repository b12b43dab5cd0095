package cache

import (
	"context"
	"sync"
	"time"
)

//go:generate mockgen -destination ../mocks/mock_cache.go -package pkgmocks github.com/mysupertc/MySuperTC-sub001/pkg/cache Cache

// Cache stores opaque byte values with a TTL.
// Implementations can be in-memory or Redis-backed; a miss is reported as
// (nil, false, nil), never as an error.
type Cache interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value in the cache with the specified TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a specific key from the cache
	Delete(ctx context.Context, key string) error

	// Close releases background goroutines or connections
	Close() error
}

// cacheItem represents a single cached value with expiration
type cacheItem struct {
	value      []byte
	expiration time.Time
}

func (item *cacheItem) isExpired(now time.Time) bool {
	return now.After(item.expiration)
}

// InMemoryCache is a thread-safe in-memory cache implementation
type InMemoryCache struct {
	items           map[string]*cacheItem
	mu              sync.RWMutex
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

// NewInMemoryCache creates a new in-memory cache with automatic cleanup.
// cleanupInterval determines how often expired items are removed.
func NewInMemoryCache(cleanupInterval time.Duration) *InMemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	c := &InMemoryCache{
		items:           make(map[string]*cacheItem),
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}

	go c.startCleanup()

	return c
}

// Get retrieves a copy of a value from the cache
func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, found := c.items[key]
	if !found || item.isExpired(c.now()) {
		return nil, false, nil
	}

	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, true, nil
}

// Set stores a copy of value with the specified TTL
func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem{
		value:      stored,
		expiration: c.now().Add(ttl),
	}
	return nil
}

// Delete removes a specific key from the cache
func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Clear removes all items from the cache
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*cacheItem)
}

// Size returns the number of items currently in the cache.
// Expired items that haven't been cleaned up yet are included.
func (c *InMemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *InMemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
	return nil
}

func (c *InMemoryCache) startCleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

// cleanup removes all expired items from the cache
func (c *InMemoryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if item.isExpired(now) {
			delete(c.items, key)
		}
	}
}
