/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package dualcache

import (
	"github.com/VictoriaMetrics/fastcache"
)

// DefaultTextSize is the fastcache budget for rendered text, in bytes.
const DefaultTextSize = 1 << 20

// Text caches rendered human readable strings (legal children
// descriptions and the like) derived from the permanent metadata.
// Entries are evicted under memory pressure and recomputed on next
// access, so the cache never has to be invalidated for correctness as
// long as stale keys are dropped on re-registration.
type Text struct {
	c *fastcache.Cache
}

// NewText returns a rendered text cache with the given byte budget;
// non-positive values fall back to DefaultTextSize.
func NewText(maxBytes int) *Text {
	if maxBytes <= 0 {
		maxBytes = DefaultTextSize
	}
	return &Text{c: fastcache.New(maxBytes)}
}

// Get returns the cached text for the key.
func (t *Text) Get(key string) (string, bool) {
	v, ok := t.c.HasGet(nil, []byte(key))
	if !ok {
		return "", false
	}
	return string(v), true
}

// GetOrRender returns the cached text for the key, rendering and
// caching it on a miss.
func (t *Text) GetOrRender(key string, render func() string) string {
	if s, ok := t.Get(key); ok {
		return s
	}
	s := render()
	t.Set(key, s)
	return s
}

// Set stores the text under the key.
func (t *Text) Set(key, val string) {
	t.c.Set([]byte(key), []byte(val))
}

// Del drops the key.
func (t *Text) Del(key string) {
	t.c.Del([]byte(key))
}

// Reset drops all entries.
func (t *Text) Reset() {
	t.c.Reset()
}
