package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"showcatalog/internal/domain"
)

// Clock supplies the current time; tests swap it for a controllable one.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// cacheEntry holds a cached page and its expiration time.
type cacheEntry struct {
	page      *domain.CatalogPage
	expiresAt time.Time
}

// MemoryCache is a thread-safe in-process page cache.
// Expiry is checked on read. Sweep reclaims memory held by expired entries.
type MemoryCache struct {
	entries map[string]cacheEntry
	mu      sync.RWMutex
	maxSize int
	clock   Clock
}

// Option configures a MemoryCache.
type Option func(*MemoryCache)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(m *MemoryCache) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithMaxSize bounds the number of stored entries.
func WithMaxSize(n int) Option {
	return func(m *MemoryCache) {
		if n > 0 {
			m.maxSize = n
		}
	}
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache(opts ...Option) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]cacheEntry),
		maxSize: 10000,
		clock:   SystemClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the page stored under key if it has not expired yet.
func (c *MemoryCache) Get(key string) (*domain.CatalogPage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.entries[key]
	if found && c.clock.Now().Before(entry.expiresAt) {
		return entry.page, true
	}
	return nil, false
}

// Put stores page under key for ttl. An existing entry is replaced.
// If the cache exceeds maxSize, one other entry is evicted.
func (c *MemoryCache) Put(key string, page *domain.CatalogPage, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		page:      page,
		expiresAt: c.clock.Now().Add(ttl),
	}

	if len(c.entries) > c.maxSize {
		// Map iteration order is random, so this drops an arbitrary entry.
		for k := range c.entries {
			if k == key {
				continue
			}
			delete(c.entries, k)
			break
		}
	}
}

// EvictExpired removes all expired entries and returns how many were dropped.
func (c *MemoryCache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	initialSize := len(c.entries)
	now := c.clock.Now()
	for k, v := range c.entries {
		if !now.Before(v.expiresAt) {
			delete(c.entries, k)
		}
	}
	evicted := initialSize - len(c.entries)
	if evicted > 0 {
		log.Debug().Int("count", evicted).Msg("Evicted expired cache entries")
	}
	return evicted
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep calls EvictExpired every interval until ctx is done.
func (c *MemoryCache) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.EvictExpired()
		}
	}
}
