package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a bounded key/value cache with per-entry expiry.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(key K)
	Len() int
	Purge()
}

type entry[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
	element *list.Element
}

type lruCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	items    map[K]*entry[K, V]
	order    *list.List
}

// NewLRU creates an LRU cache holding at most capacity entries. ttl is the
// default lifetime used when Set is called with ttl <= 0; a negative ttl
// disables expiry altogether.
func NewLRU[K comparable, V any](capacity int, ttl time.Duration) Cache[K, V] {
	if capacity <= 0 {
		capacity = 512
	}
	if ttl == 0 {
		ttl = time.Minute
	}
	return &lruCache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[K]*entry[K, V], capacity),
		order:    list.New(),
	}
}

func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		if ent.expires.IsZero() || c.now().Before(ent.expires) {
			c.order.MoveToFront(ent.element)
			return ent.value, true
		}
		c.removeEntry(ent)
	}
	var zero V
	return zero, false
}

func (c *lruCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		ent.value = value
		ent.expires = c.computeExpiry(ttl)
		c.order.MoveToFront(ent.element)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictOldest()
	}

	ent := &entry[K, V]{key: key, value: value, expires: c.computeExpiry(ttl)}
	ent.element = c.order.PushFront(ent)
	c.items[key] = ent
}

func (c *lruCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ent, ok := c.items[key]; ok {
		c.removeEntry(ent)
	}
}

func (c *lruCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *lruCache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*entry[K, V], c.capacity)
	c.order.Init()
}

func (c *lruCache[K, V]) computeExpiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = c.ttl
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(ttl)
}

func (c *lruCache[K, V]) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	c.removeEntry(elem.Value.(*entry[K, V]))
}

func (c *lruCache[K, V]) removeEntry(ent *entry[K, V]) {
	if ent.element != nil {
		c.order.Remove(ent.element)
	}
	delete(c.items, ent.key)
}
