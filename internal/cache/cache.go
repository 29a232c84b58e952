// Package cache deduplicates engine handle construction per source.
//
// Opening a source is expensive, and UI code tends to ask for the same source
// more than once (remounts, repeated loads). Every handle is built through a
// Cache so that at most one live handle exists per source.
package cache

import (
	"fmt"
	"sync"

	"github.com/llehouerou/wavesync/internal/engine"
)

// Cache maps a source to its engine handle.
type Cache struct {
	mu      sync.Mutex
	factory engine.Factory
	handles map[string]engine.Handle
}

// New creates a cache building handles with factory.
func New(factory engine.Factory) *Cache {
	return &Cache{
		factory: factory,
		handles: make(map[string]engine.Handle),
	}
}

// Create returns the cached handle for opts.Src, constructing it on first use.
// A cached handle that has been unloaded, by a failed load for instance, is
// replaced. Construction runs under the cache lock so concurrent callers never
// open the same source twice.
func (c *Cache) Create(opts engine.Options) (engine.Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.handles[opts.Src]; ok {
		if h.State() != engine.Unloaded {
			return h, nil
		}
		delete(c.handles, opts.Src)
	}

	h, err := c.factory(opts)
	if err != nil {
		return nil, fmt.Errorf("create handle for %q: %w", opts.Src, err)
	}
	c.handles[opts.Src] = h
	return h, nil
}

// Get returns the cached handle for src.
func (c *Cache) Get(src string) (engine.Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handles[src]
	return h, ok
}

// Destroy unloads and evicts the handle for src. Missing keys are ignored.
func (c *Cache) Destroy(src string) {
	c.mu.Lock()
	h, ok := c.handles[src]
	delete(c.handles, src)
	c.mu.Unlock()

	if ok {
		h.Unload()
	}
}

// Reset unloads and evicts every handle.
func (c *Cache) Reset() {
	c.mu.Lock()
	handles := c.handles
	c.handles = make(map[string]engine.Handle)
	c.mu.Unlock()

	for _, h := range handles {
		h.Unload()
	}
}

// Len returns the number of cached handles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}
