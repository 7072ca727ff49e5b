// Package cache provides a generic loader cache combining LRU storage with
// singleflight to coalesce concurrent loads for the same key.
package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// LoaderCache caches loaded values by key. On a miss the load callback runs;
// concurrent misses for the same key share a single load via singleflight
// instead of stampeding the backing store.
type LoaderCache[V any] struct {
	lru   *lru.Cache[string, V]
	group singleflight.Group
}

// NewLoaderCache creates a loader cache holding at most maxEntries values.
func NewLoaderCache[V any](maxEntries int) (*LoaderCache[V], error) {
	lruCache, err := lru.New[string, V](maxEntries)
	if err != nil {
		return nil, err
	}
	return &LoaderCache[V]{lru: lruCache}, nil
}

// Get returns the value for key, loading it via load on cache miss. Only one
// goroutine runs load for a given key at a time; the rest share its result.
// Load errors are not cached.
func (c *LoaderCache[V]) Get(ctx context.Context, key string, load func(context.Context, string) (V, error)) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}

	val, err, _ := c.group.Do(key, func() (any, error) {
		loaded, loadErr := load(ctx, key)
		if loadErr != nil {
			return zero[V](), loadErr
		}
		c.lru.Add(key, loaded)
		return loaded, nil
	})
	if err != nil {
		return zero[V](), err
	}

	return val.(V), nil
}

// Invalidate removes the entry for key.
func (c *LoaderCache[V]) Invalidate(key string) {
	c.lru.Remove(key)
}

// Len returns the number of cached entries.
func (c *LoaderCache[V]) Len() int {
	return c.lru.Len()
}

func zero[V any]() (z V) { return z }
