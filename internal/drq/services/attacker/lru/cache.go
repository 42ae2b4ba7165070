// Package lru memoizes length-window estimates for the attacker.
package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/drq-attack/internal/drq/services/attacker"
)

// windowCache is an LRU-backed attacker.WindowCache tracking hits, misses and evictions.
type windowCache struct {
	lru       *lru.Cache[attacker.WindowKey, attacker.Window]
	hits      uint64
	misses    uint64
	evictions uint64
}

// disabledCache always misses; used when size <= 0.
type disabledCache struct{}

// New creates a WindowCache holding up to size estimates. If size <= 0 a
// disabled cache is returned that always misses.
func New(size int) (attacker.WindowCache, error) {
	if size <= 0 {
		return &disabledCache{}, nil
	}

	var wc windowCache
	cache, err := lru.NewWithEvict(size, func(attacker.WindowKey, attacker.Window) {
		atomic.AddUint64(&wc.evictions, 1)
	})
	if err != nil {
		return nil, err
	}
	wc.lru = cache
	return &wc, nil
}

func (c *windowCache) Get(key attacker.WindowKey) (attacker.Window, bool) {
	if w, ok := c.lru.Get(key); ok {
		atomic.AddUint64(&c.hits, 1)
		return w, true
	}
	atomic.AddUint64(&c.misses, 1)
	return attacker.Window{}, false
}

func (c *windowCache) Put(key attacker.WindowKey, w attacker.Window) {
	c.lru.Add(key, w)
}

func (c *windowCache) Len() int { return c.lru.Len() }

// Stats returns cumulative hit/miss/eviction counters.
func (c *windowCache) Stats() (hits, misses, evictions uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses), atomic.LoadUint64(&c.evictions)
}

func (d *disabledCache) Get(attacker.WindowKey) (attacker.Window, bool) {
	return attacker.Window{}, false
}

func (d *disabledCache) Put(attacker.WindowKey, attacker.Window) {}

func (d *disabledCache) Len() int { return 0 }

func (d *disabledCache) Stats() (uint64, uint64, uint64) { return 0, 0, 0 }

var _ attacker.WindowCache = (*windowCache)(nil)
var _ attacker.WindowCache = (*disabledCache)(nil)
