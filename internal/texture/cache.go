package texture

import (
	"image"
	"sync"
)

// Resolver resolves a texture name to a decoded RGBA image.
type Resolver interface {
	Resolve(texName string) *image.NRGBA
}

// Cache is a concurrency-safe texture cache keyed by stem. Decode
// failures are cached too, so a broken file costs one attempt per run.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index
}

type cacheEntry struct {
	img *image.NRGBA
}

// NewCache creates a texture cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: index,
	}
}

// Resolve loads and caches a texture by name, trying candidates in index
// rank order until one decodes. Returns nil when nothing usable exists.
func (c *Cache) Resolve(texName string) *image.NRGBA {
	candidates := c.index.Candidates(texName)
	if len(candidates) == 0 {
		return nil
	}
	key := candidates[0]

	c.mu.RLock()
	if entry, exists := c.items[key]; exists {
		c.mu.RUnlock()
		return entry.img
	}
	c.mu.RUnlock()

	var img *image.NRGBA
	for _, path := range candidates {
		if decoded, err := LoadTexture(path); err == nil {
			img = decoded
			break
		}
	}

	c.mu.Lock()
	if entry, exists := c.items[key]; exists {
		c.mu.Unlock()
		return entry.img
	}
	c.items[key] = &cacheEntry{img: img}
	c.mu.Unlock()

	return img
}
