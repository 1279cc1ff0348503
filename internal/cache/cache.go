// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes successful backend calls and retries failing
// ones with exponential backoff. The cache is a policy applied to any
// producer; it knows nothing about the backend behind it.
package cache

import (
	"context"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/singleflight"
)

// DefaultCapacity is the number of distinct keys kept when New is given a
// non-positive capacity.
const DefaultCapacity = 100

// Cache is a bounded least-recently-used memo of successful results. It is
// safe for concurrent use. Concurrent calls for the same key share a single
// in-flight producer run.
type Cache struct {
	mu    sync.Mutex
	store *lru.Cache
	group singleflight.Group

	hits   int
	misses int
}

// New returns a cache holding at most capacity results.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{store: lru.New(capacity)}
}

// Call returns the memoized result for key, or runs produce under Retry
// and memoizes the result on success. Failures are never cached, so a
// later call for the same key starts again from the first attempt.
func (c *Cache) Call(ctx context.Context, key string, p Policy, produce Producer) (string, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have filled the entry while we waited.
		if v, ok := c.peek(key); ok {
			return v, nil
		}
		out, err := Retry(ctx, p, produce)
		if err != nil {
			return "", err
		}
		c.add(key, out)
		return out, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// Stats returns the hit and miss counts since the cache was created.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *Cache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store.Get(key)
	if !ok {
		c.misses++
		return "", false
	}
	c.hits++
	return v.(string), true
}

func (c *Cache) peek(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store.Get(key)
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (c *Cache) add(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Add(key, value)
}
