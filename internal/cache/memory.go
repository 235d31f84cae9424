package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const defaultMemoryEntries = 10000

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process LRU. Expired entries are dropped when read
// or when they reach the cold end of the list.
type MemoryCache struct {
	mu    sync.Mutex
	max   int
	order *list.List // front is most recently used
	index map[string]*list.Element
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithLimit(defaultMemoryEntries)
}

func NewMemoryCacheWithLimit(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = defaultMemoryEntries
	}
	return &MemoryCache{
		max:   maxEntries,
		order: list.New(),
		index: make(map[string]*list.Element),
		now:   time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		return nil, false, nil
	}
	e := el.Value.(*memoryEntry)
	if c.expired(e) {
		c.remove(el)
		return nil, false, nil
	}
	c.order.MoveToFront(el)
	return append([]byte(nil), e.value...), true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := &memoryEntry{key: key, value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return nil
	}
	c.index[key] = c.order.PushFront(e)
	for c.order.Len() > c.max {
		c.remove(c.order.Back())
	}
	for back := c.order.Back(); back != nil && c.expired(back.Value.(*memoryEntry)); back = c.order.Back() {
		c.remove(back)
	}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.remove(el)
	}
	return nil
}

// Len counts stored entries, including expired ones not yet dropped.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *MemoryCache) Close() error { return nil }

func (c *MemoryCache) expired(e *memoryEntry) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

func (c *MemoryCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.index, el.Value.(*memoryEntry).key)
}
