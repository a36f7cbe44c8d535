package transform

import "sync"

// fifoCache is a bounded map with first-in-first-out eviction. The
// transformer only ever grows it one entry at a time, so a key slice
// is enough to track insertion order.
type fifoCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]string
	order   []string
}

func newFifoCache(maxSize int) *fifoCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &fifoCache{
		maxSize: maxSize,
		entries: make(map[string]string),
	}
}

func (c *fifoCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.entries[key]
	return val, ok
}

func (c *fifoCache) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = value
		return
	}

	if len(c.entries) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = value
	c.order = append(c.order, key)
}

func (c *fifoCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
