package kvstore

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached wraps a Store with an LRU read cache. Writes go through to the
// underlying store and update the cache in place, so reads after a write
// always observe the written value. ForEach bypasses the cache.
type Cached struct {
	base  Store
	cache *lru.Cache[string, []byte]
}

// NewCached wraps base with an LRU cache of the given size.
func NewCached(base Store, size int) (*Cached, error) {
	if size <= 0 {
		size = 4096
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Cached{base: base, cache: cache}, nil
}

func (c *Cached) Get(key []byte) ([]byte, error) {
	if value, ok := c.cache.Get(string(key)); ok {
		out := make([]byte, len(value))
		copy(out, value)
		return out, nil
	}
	value, err := c.base.Get(key)
	if err != nil {
		return nil, err
	}
	if value != nil {
		c.cache.Add(string(key), value)
	}
	return value, nil
}

func (c *Cached) Put(key, value []byte) error {
	if err := c.base.Put(key, value); err != nil {
		return err
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	c.cache.Add(string(key), stored)
	return nil
}

func (c *Cached) Delete(key []byte) error {
	if err := c.base.Delete(key); err != nil {
		return err
	}
	c.cache.Remove(string(key))
	return nil
}

func (c *Cached) Has(key []byte) (bool, error) {
	if _, ok := c.cache.Get(string(key)); ok {
		return true, nil
	}
	return c.base.Has(key)
}

func (c *Cached) ForEach(prefix []byte, fn func(key, value []byte) bool) error {
	return c.base.ForEach(prefix, fn)
}

func (c *Cached) Close() error {
	c.cache.Purge()
	return c.base.Close()
}
