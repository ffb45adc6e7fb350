package domain

import "container/list"

// clockLRU is a bounded least-recently-used ClockCache.
// eviction order never affects correctness, only hit rate.
type clockLRU struct {
	capacity int
	order    *list.List
	entries  map[int64]*list.Element
}

type clockEntry struct {
	key   int64
	value Clock
}

// NewClockLRU creates a bounded in-memory clock cache.
// a capacity below 1 is a precondition violation.
func NewClockLRU(capacity int) ClockCache {
	if capacity < 1 {
		panic("clock cache capacity must be positive")
	}
	return &clockLRU{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[int64]*list.Element, capacity),
	}
}

func (c *clockLRU) Get(key int64) (Clock, bool) {
	el, ok := c.entries[key]
	if !ok {
		return Clock{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(clockEntry).value, true
}

func (c *clockLRU) Set(key int64, value Clock) {
	if el, ok := c.entries[key]; ok {
		el.Value = clockEntry{key: key, value: value}
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(clockEntry).key)
		}
	}

	c.entries[key] = c.order.PushFront(clockEntry{key: key, value: value})
}

func (c *clockLRU) Len() int {
	return c.order.Len()
}
