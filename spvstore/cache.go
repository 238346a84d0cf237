package spvstore

import (
	"container/list"
	"sync"
)

// defaultProbeCacheSize bounds how many hash->slot-offset probe results the
// store keeps warm. It is small on purpose: the cache only exists to skip
// the linear probe for hot lookups (chain head and its recent ancestors),
// not to mirror the whole table.
const defaultProbeCacheSize = 256

type probeCacheEntry struct {
	hash   [32]byte
	offset int64
}

// probeCache is a bounded LRU mapping a block hash to the byte offset of
// the slot array entry that last held it. It never speaks for whether that
// slot is still valid — callers always re-check the hash stored there
// before trusting a hit, since the FIFO ring can recycle a slot out from
// under a stale cache entry.
type probeCache struct {
	mu       sync.Mutex
	capacity int
	items    map[[32]byte]*list.Element
	order    *list.List
}

func newProbeCache(capacity int) *probeCache {
	if capacity <= 0 {
		capacity = defaultProbeCacheSize
	}
	return &probeCache{
		capacity: capacity,
		items:    make(map[[32]byte]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *probeCache) Get(hash [32]byte) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[hash]
	if !ok {
		return 0, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*probeCacheEntry).offset, true
}

func (c *probeCache) Put(hash [32]byte, offset int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[hash]; ok {
		el.Value.(*probeCacheEntry).offset = offset
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&probeCacheEntry{hash: hash, offset: offset})
	c.items[hash] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*probeCacheEntry).hash)
		}
	}
}

func (c *probeCache) Remove(hash [32]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[hash]; ok {
		c.order.Remove(el)
		delete(c.items, hash)
	}
}

func (c *probeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[[32]byte]*list.Element, c.capacity)
	c.order.Init()
}
