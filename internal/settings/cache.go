package settings

import (
	"context"
	"sync"
	"time"
)

// Cache is a read-through cache over a settings Reader with a bounded TTL.
//
// Readers never block on a refresh: once a value is cached, an expired read
// returns the stale value immediately and triggers at most one background
// refresh. Only the very first read (nothing cached yet) fetches
// synchronously. Admin writes call Invalidate so the next read refetches.
type Cache struct {
	store Reader
	ttl   time.Duration

	mu         sync.Mutex
	cached     *Settings
	fetchedAt  time.Time
	refreshing bool
	// gen is bumped by Invalidate; a background refresh started under an
	// older generation may have read the store before the invalidating write
	// and must not overwrite the invalidation.
	gen uint64
}

// NewCache builds a cache over the given reader.
func NewCache(store Reader, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl}
}

// Get returns the current settings, serving a stale value within the accepted
// staleness window rather than blocking callers on a refresh.
func (c *Cache) Get(ctx context.Context) (*Settings, error) {
	c.mu.Lock()
	if c.cached != nil {
		if time.Since(c.fetchedAt) < c.ttl {
			s := c.cached
			c.mu.Unlock()
			return s, nil
		}
		// Expired: serve stale, refresh once in the background.
		s := c.cached
		if !c.refreshing {
			c.refreshing = true
			go c.refresh(c.gen)
		}
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	// Nothing cached yet: fetch synchronously.
	fresh, err := c.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.cached = fresh
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return fresh, nil
}

// refresh fetches a fresh value outside any caller's critical path. A failed
// refresh keeps the stale value; the next expired read retries. A refresh
// overtaken by Invalidate discards its result.
func (c *Cache) refresh(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fresh, err := c.store.Get(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshing = false
	if err != nil || gen != c.gen {
		return
	}
	c.cached = fresh
	c.fetchedAt = time.Now()
}

// Invalidate drops the cached value so the next read hits the store. Called
// on admin writes.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.cached = nil
	c.fetchedAt = time.Time{}
}
