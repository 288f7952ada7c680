package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is an in-memory cache with TTL expiry and size-based eviction. Expired
// entries are dropped lazily on access and swept opportunistically on Set, so
// no background goroutine is needed.
type LRU[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List // front = most recently used
}

type lruEntry[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

// NewLRU creates a cache holding at most maxSize entries, each valid for ttl.
func NewLRU[T any](maxSize int, ttl time.Duration) *LRU[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRU[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	entry := elem.Value.(*lruEntry[T])
	if time.Now().After(entry.expiresAt) {
		c.remove(elem)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return entry.data, true
}

func (c *LRU[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*lruEntry[T])
		entry.data = data
		entry.expiresAt = now.Add(c.ttl)
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(&lruEntry[T]{
		key:       key,
		data:      data,
		expiresAt: now.Add(c.ttl),
	})

	for c.order.Len() > c.maxSize {
		// Prefer evicting an already-expired entry over the oldest live one.
		if victim := c.expiredBack(now); victim != nil {
			c.remove(victim)
			continue
		}
		c.remove(c.order.Back())
	}
}

func (c *LRU[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// Len returns the current number of entries, expired ones included.
func (c *LRU[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge drops every entry.
func (c *LRU[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

func (c *LRU[T]) expiredBack(now time.Time) *list.Element {
	for elem := c.order.Back(); elem != nil; elem = elem.Prev() {
		if now.After(elem.Value.(*lruEntry[T]).expiresAt) {
			return elem
		}
	}
	return nil
}

func (c *LRU[T]) remove(elem *list.Element) {
	if elem == nil {
		return
	}
	delete(c.items, elem.Value.(*lruEntry[T]).key)
	c.order.Remove(elem)
}
