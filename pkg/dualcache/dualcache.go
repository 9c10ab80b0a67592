/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

// Package dualcache implements the two tier cache discipline of the
// metadata core: a permanent tier holding values computed during the
// load phase, readable without locks once sealed, and a bounded
// computed tier for values derived lazily at runtime.
//
// The computed tier only ever holds pure functions of the permanent
// data, so it may be evicted wholesale at any moment without
// correctness loss; entries are recomputed on next access.
package dualcache

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultComputedSize bounds the computed tier when no explicit size is
// given to New.
const DefaultComputedSize = 512

// Cache is a two tier cache keyed by K.
//
// Before Seal the permanent tier is a mutex guarded map written by the
// load phase. Seal publishes the permanent tier through an atomic
// pointer; from then on permanent reads take no lock. Writes after
// Seal (hot extension) copy the published map and swap the pointer.
type Cache[K comparable, V any] struct {
	mu       sync.RWMutex
	perm     map[K]V
	frozen   atomic.Pointer[map[K]V]
	sealed   atomic.Bool
	computed *lru.Cache[K, V]
}

// New returns an empty cache. computedSize bounds the computed tier;
// non-positive values fall back to DefaultComputedSize.
func New[K comparable, V any](computedSize int) *Cache[K, V] {
	if computedSize <= 0 {
		computedSize = DefaultComputedSize
	}
	computed, err := lru.New[K, V](computedSize)
	if err != nil {
		// lru.New fails on non-positive size only
		panic(err)
	}
	return &Cache[K, V]{
		perm:     make(map[K]V),
		computed: computed,
	}
}

// Get looks the key up in the permanent tier, then in the computed tier.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if v, ok := c.getPermanent(key); ok {
		return v, true
	}
	return c.computed.Get(key)
}

// GetOrCompute implements the cache-aside contract: permanent tier,
// then computed tier, then compute and store in the computed tier.
// While the cache is not sealed the computed value is promoted to the
// permanent tier instead, so that everything derived during the load
// phase survives eviction.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		var none V
		return none, err
	}
	if c.sealed.Load() {
		// first writer wins; a concurrent duplicate computation
		// produces an identical pure value
		c.computed.Add(key, v)
	} else {
		c.PutPermanent(key, v)
	}
	return v, nil
}

// PutPermanent stores the value in the permanent tier and drops any
// computed entry for the key.
func (c *Cache[K, V]) PutPermanent(key K, v V) {
	c.mu.Lock()
	if c.sealed.Load() {
		m := c.copyFrozen()
		m[key] = v
		c.frozen.Store(&m)
	} else {
		c.perm[key] = v
	}
	c.mu.Unlock()
	c.computed.Remove(key)
}

// Invalidate removes the key from both tiers.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	if c.sealed.Load() {
		if m := c.frozen.Load(); m != nil {
			if _, ok := (*m)[key]; ok {
				cp := c.copyFrozen()
				delete(cp, key)
				c.frozen.Store(&cp)
			}
		}
	} else {
		delete(c.perm, key)
	}
	c.mu.Unlock()
	c.computed.Remove(key)
}

// DropComputed evicts the whole computed tier. Always safe: computed
// entries are re-derivable.
func (c *Cache[K, V]) DropComputed() {
	c.computed.Purge()
}

// Seal publishes the permanent tier for lock-free reads. Idempotent.
func (c *Cache[K, V]) Seal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed.Load() {
		return
	}
	m := make(map[K]V, len(c.perm))
	for k, v := range c.perm {
		m[k] = v
	}
	c.frozen.Store(&m)
	c.sealed.Store(true)
	c.perm = nil
}

// Sealed reports whether Seal has been called.
func (c *Cache[K, V]) Sealed() bool { return c.sealed.Load() }

// Len returns the permanent tier entry count.
func (c *Cache[K, V]) Len() int {
	if c.sealed.Load() {
		if m := c.frozen.Load(); m != nil {
			return len(*m)
		}
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.perm)
}

func (c *Cache[K, V]) getPermanent(key K) (V, bool) {
	if c.sealed.Load() {
		if m := c.frozen.Load(); m != nil {
			v, ok := (*m)[key]
			return v, ok
		}
		var none V
		return none, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.perm[key]
	return v, ok
}

// copyFrozen is called under mu.
func (c *Cache[K, V]) copyFrozen() map[K]V {
	old := c.frozen.Load()
	if old == nil {
		return make(map[K]V)
	}
	m := make(map[K]V, len(*old)+1)
	for k, v := range *old {
		m[k] = v
	}
	return m
}
