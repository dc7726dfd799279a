package fonts

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Key identifies a requested face. Family is compared case-insensitively.
type Key struct {
	Family string
	Weight int
	Size   int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%d", strings.ToLower(k.Family), k.Weight, k.Size)
}

// Cache maps requested keys to resolved faces. It is append-only: entries are
// never mutated or evicted, so readers need no coordination beyond the map
// lock. Concurrent loads of the same key are collapsed into one; a racing
// [Cache.Put] simply overwrites with an equivalent face.
type Cache struct {
	mu    sync.RWMutex
	faces map[string]*Face
	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{faces: make(map[string]*Face)}
}

// Get returns the cached face for k.
func (c *Cache) Get(k Key) (*Face, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.faces[k.String()]
	return f, ok
}

// Put stores f under k, replacing any previous entry.
func (c *Cache) Put(k Key, f *Face) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faces[k.String()] = f
}

// GetOrLoad returns the cached face for k, calling load on a miss. Failed
// loads are not cached.
func (c *Cache) GetOrLoad(k Key, load func() (*Face, error)) (*Face, error) {
	if f, ok := c.Get(k); ok {
		c.hits.Add(1)
		return f, nil
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(k.String(), func() (any, error) {
		if f, ok := c.Get(k); ok {
			return f, nil
		}
		f, err := load()
		if err != nil {
			return nil, err
		}
		c.Put(k, f)
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Face), nil
}

// Len returns the number of cached faces.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.faces)
}

// Stats returns the number of hits and misses since the cache was created.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
