package blogapp

import (
	"context"
	"sync"
	"time"
)

// TagCache holds the tag cloud of published posts for a TTL. Engagement
// read models are never cached; only this cheap aggregate is.
type TagCache struct {
	mu      sync.RWMutex
	tags    []string
	fetched time.Time
	ttl     time.Duration
	store   *Store
	now     func() time.Time
}

// NewTagCache creates a TagCache backed by the given Store.
func NewTagCache(s *Store, ttl time.Duration) *TagCache {
	return &TagCache{store: s, ttl: ttl, now: time.Now}
}

func (c *TagCache) valid() bool {
	return c.tags != nil && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *TagCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.tags = nil
	c.mu.Unlock()
}

// List returns the sorted tags of published posts. It tries a read lock
// first and only takes the write lock when a reload is needed.
func (c *TagCache) List(ctx context.Context) ([]string, error) {
	if c == nil {
		return nil, nil
	}
	c.mu.RLock()
	if c.valid() {
		tags := c.tags
		c.mu.RUnlock()
		return tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.tags, nil
	}
	tags, err := c.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	c.tags = tags
	c.fetched = c.now()
	return c.tags, nil
}
