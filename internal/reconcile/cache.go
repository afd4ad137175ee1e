package reconcile

import (
	"container/list"
	"sync"

	"bookden/pkg/models"
)

// DefaultCacheCapacity bounds the reconciliation cache unless configured
// otherwise.
const DefaultCacheCapacity = 128

// Cache memoizes reconciled records per stable identity with LRU eviction.
// All operations hold one mutex, so lookup+touch and insert+evict are atomic
// with respect to concurrent callers. The pipeline work itself runs outside
// this lock.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	items    map[string]*list.Element
}

type cacheEntry struct {
	key   string
	value models.NormalizedBook
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns the cached record for key, marking it most recently used.
func (c *Cache) Get(key string) (models.NormalizedBook, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return models.NormalizedBook{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).value, true
}

// Put stores the record under key, evicting the single least recently used
// entry if the capacity is exceeded.
func (c *Cache) Put(key string, value models.NormalizedBook) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).value = value
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&cacheEntry{key: key, value: value})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len reports the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
