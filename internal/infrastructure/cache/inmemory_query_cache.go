package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const defaultCleanupInterval = 30 * time.Second

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *cacheEntry) isExpired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryQueryCache implements QueryCache with a map and a janitor goroutine.
// State is per process.
type InMemoryQueryCache struct {
	entries   sync.Map // map[string]*cacheEntry
	stopCh    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	hits   atomic.Int64
	misses atomic.Int64
}

// NewInMemoryQueryCache creates the cache and starts expiry cleanup
func NewInMemoryQueryCache(cleanupInterval time.Duration) *InMemoryQueryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}
	c := &InMemoryQueryCache{stopCh: make(chan struct{})}

	c.wg.Add(1)
	go c.cleanupLoop(cleanupInterval)

	return c
}

// Get returns a live entry
func (c *InMemoryQueryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.entries.Load(key)
	if !ok {
		c.misses.Add(1)
		return nil, false, nil
	}
	e := v.(*cacheEntry)
	if e.isExpired(time.Now()) {
		c.entries.Delete(key)
		c.misses.Add(1)
		return nil, false, nil
	}
	c.hits.Add(1)
	return e.value, true, nil
}

// Set stores value; a ttl <= 0 never expires
func (c *InMemoryQueryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := &cacheEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.entries.Store(key, e)
	return nil
}

// InvalidatePrefix removes all keys with the prefix
func (c *InMemoryQueryCache) InvalidatePrefix(_ context.Context, prefix string) error {
	c.entries.Range(func(k, _ any) bool {
		if strings.HasPrefix(k.(string), prefix) {
			c.entries.Delete(k)
		}
		return true
	})
	return nil
}

// Close stops the janitor. Safe to call more than once.
func (c *InMemoryQueryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopCh)
		c.wg.Wait()
	})
	return nil
}

// Stats returns hit and miss counters
func (c *InMemoryQueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the number of stored entries, expired ones included
func (c *InMemoryQueryCache) Size() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *InMemoryQueryCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryQueryCache) cleanup() {
	now := time.Now()
	c.entries.Range(func(k, v any) bool {
		if v.(*cacheEntry).isExpired(now) {
			c.entries.Delete(k)
		}
		return true
	})
}

var _ QueryCache = (*InMemoryQueryCache)(nil)
