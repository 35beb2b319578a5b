package manifest

import (
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes parsed manifests by absolute file path.
//
// A Cache is created once per command and passed to everything that reads
// manifests. Whoever writes a manifest must call [Cache.Invalidate] for it.
// It is not safe for concurrent use.
type Cache struct {
	entries *lru.Cache[string, *Manifest]
}

// NewCache returns a cache holding up to size manifests (256 if size <= 0).
func NewCache(size int) *Cache {
	if size <= 0 {
		size = 256
	}
	c, _ := lru.New[string, *Manifest](size)
	return &Cache{entries: c}
}

// Load returns the manifest at path (a file or a directory containing
// pyproject.toml), parsing it on first use.
func (c *Cache) Load(path string) (*Manifest, error) {
	key := cacheKey(path)
	if m, ok := c.entries.Get(key); ok {
		return m, nil
	}
	m, err := Load(key)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, m)
	return m, nil
}

// Invalidate drops the cached manifest for path.
func (c *Cache) Invalidate(path string) {
	c.entries.Remove(cacheKey(path))
}

// Len returns the number of cached manifests.
func (c *Cache) Len() int { return c.entries.Len() }

func cacheKey(path string) string {
	path = resolvePath(path)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
