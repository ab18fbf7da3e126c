package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/tokenswap/pkg/domain"
)

// MemoryCache keeps quote lists in process memory with a TTL per key.
type MemoryCache struct {
	cache map[string]*cacheEntry
	mu    sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

type cacheEntry struct {
	quotes    []domain.Quote
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache and starts its janitor.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	c := &MemoryCache{
		cache: make(map[string]*cacheEntry),
		stop:  make(chan struct{}),
	}
	go c.cleanup(cleanupInterval)
	return c
}

// Get returns the cached quotes, or nil on a miss or expired entry.
func (c *MemoryCache) Get(_ context.Context, key string) ([]domain.Quote, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	out := make([]domain.Quote, len(entry.quotes))
	copy(out, entry.quotes)
	return out, nil
}

// Set stores quotes under key for ttl.
func (c *MemoryCache) Set(_ context.Context, key string, quotes []domain.Quote, ttl time.Duration) error {
	stored := make([]domain.Quote, len(quotes))
	copy(stored, quotes)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = &cacheEntry{quotes: stored, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, key)
	return nil
}

// Close stops the janitor.
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.cache {
				if now.After(entry.expiresAt) {
					delete(c.cache, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
