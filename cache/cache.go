package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

type cacheItem[V any] struct {
	value     V
	expiresAt int64 // UnixNano, 0 means no expiration
}

func (item *cacheItem[V]) expired() bool {
	if item.expiresAt == 0 {
		return false
	}
	return time.Now().UnixNano() > item.expiresAt
}

// Cache is a thread-safe, generic store with optional TTL. The
// sequencer uses it for run-scoped values passed between steps and for
// per-host executor reuse.
type Cache[K comparable, V any] struct {
	store      sync.Map
	defaultTTL time.Duration
	itemCount  atomic.Int64
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithDefaultTTL sets the default time-to-live for items set via Set.
// Zero means items do not expire.
func WithDefaultTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.defaultTTL = ttl
	}
}

// NewCache creates a new Cache instance.
func NewCache[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set adds or updates an item with the default TTL.
func (c *Cache[K, V]) Set(k K, v V) {
	c.SetWithTTL(k, v, c.defaultTTL)
}

// SetWithTTL adds or updates an item with a specific TTL. A zero TTL
// means the item does not expire; a negative TTL removes the item.
func (c *Cache[K, V]) SetWithTTL(k K, v V, ttl time.Duration) {
	if ttl < 0 {
		c.Delete(k)
		return
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	item := &cacheItem[V]{value: v, expiresAt: expiresAt}
	if _, loaded := c.store.LoadOrStore(k, item); loaded {
		c.store.Store(k, item)
	} else {
		c.itemCount.Add(1)
	}
}

// Get retrieves an item. It returns the value and true if the item
// exists and has not expired.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	var zeroV V
	loaded, ok := c.store.Load(k)
	if !ok {
		return zeroV, false
	}
	item := loaded.(*cacheItem[V])
	if item.expired() {
		// Lazy deletion on read.
		if _, present := c.store.LoadAndDelete(k); present {
			c.itemCount.Add(-1)
		}
		return zeroV, false
	}
	return item.value, true
}

// GetOrSet returns the existing value for the key if present and not
// expired; otherwise it stores and returns the given value. The second
// result is true if the value was loaded, false if stored.
func (c *Cache[K, V]) GetOrSet(k K, v V) (V, bool) {
	if existing, found := c.Get(k); found {
		return existing, true
	}
	c.Set(k, v)
	return v, false
}

// Delete removes an item.
func (c *Cache[K, V]) Delete(k K) {
	if _, loaded := c.store.LoadAndDelete(k); loaded {
		c.itemCount.Add(-1)
	}
}

// Range iterates over unexpired items. If f returns false, iteration
// stops. Order is not guaranteed.
func (c *Cache[K, V]) Range(f func(key K, value V) bool) {
	now := time.Now().UnixNano()
	c.store.Range(func(key, value interface{}) bool {
		item := value.(*cacheItem[V])
		if item.expiresAt != 0 && now > item.expiresAt {
			return true
		}
		return f(key.(K), item.value)
	})
}

// Clean removes all items.
func (c *Cache[K, V]) Clean() {
	c.store = sync.Map{}
	c.itemCount.Store(0)
}

// Len returns the number of stored items, including expired ones not
// yet lazily collected.
func (c *Cache[K, V]) Len() int64 {
	return c.itemCount.Load()
}
