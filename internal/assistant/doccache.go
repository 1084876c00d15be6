package assistant

import (
	"context"
	"sync"
)

// DocumentCache lazily holds one document's text for the process lifetime.
// The first caller populates it under the write lock; everyone else takes
// the read-locked fast path. There is no expiry.
type DocumentCache struct {
	mu    sync.RWMutex
	value string
	ok    bool
}

// NewDocumentCache builds an empty cache.
func NewDocumentCache() *DocumentCache {
	return &DocumentCache{}
}

// GetOrFetch returns the cached text, loading it through loader on the
// first call. The state is re-checked after acquiring the write lock so
// concurrent first readers fetch only once. A failed load leaves the cache
// empty and the next caller retries.
func (c *DocumentCache) GetOrFetch(ctx context.Context, loader func(context.Context) (string, error)) (string, error) {
	c.mu.RLock()
	if c.ok {
		value := c.value
		c.mu.RUnlock()
		return value, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ok {
		return c.value, nil
	}

	value, err := loader(ctx)
	if err != nil {
		return "", err
	}
	c.value = value
	c.ok = true
	return value, nil
}
