package cache

import (
	"sync"

	"github.com/duelmod/cardtext/metric"
)

type entry[V any] struct {
	// value is written under Cache.mu lock
	// can be read without lock if wg is nil or was waited on
	value V
	// size is written under Cache.mu lock together with value
	size uint64
	// wg is written under Cache.mu lock
	// if not nil, the loader is in flight, wait on it
	// if after waiting the entry is gone from the map,
	// the load failed and the entry is abandoned, retry
	wg *sync.WaitGroup
}

// Cache is a keyed single-flight cache: the first caller of a key runs the
// loader, concurrent callers of the same key wait for its result. Load
// errors are returned to the caller that hit them and are never cached.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	size    uint64
}

func New[V any]() *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]*entry[V]),
	}
}

func (c *Cache[V]) GetWithError(key string, load func() (V, int, error)) (V, error) {
	for {
		c.mu.Lock()
		e, ok := c.entries[key]
		if !ok {
			e = &entry[V]{wg: &sync.WaitGroup{}}
			e.wg.Add(1)
			c.entries[key] = e
			c.mu.Unlock()

			metric.CacheMissesTotal.Inc()
			return c.fill(key, e, load)
		}

		wg := e.wg
		c.mu.Unlock()

		if wg == nil {
			metric.CacheHitsTotal.Inc()
			return e.value, nil
		}
		wg.Wait()

		c.mu.Lock()
		cur, ok := c.entries[key]
		filled := ok && cur.wg == nil
		c.mu.Unlock()

		if filled {
			metric.CacheHitsTotal.Inc()
			return cur.value, nil
		}
		// abandoned entry, retry
	}
}

func (c *Cache[V]) fill(key string, e *entry[V], load func() (V, int, error)) (V, error) {
	value, size, err := load()

	c.mu.Lock()
	wg := e.wg
	if err != nil {
		if c.entries[key] == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		wg.Done()

		var zero V
		return zero, err
	}

	e.value = value
	e.size = uint64(size)
	e.wg = nil
	// Reset may have dropped the entry while the loader ran
	if c.entries[key] == e {
		c.size += e.size
		metric.CacheSizeBytes.Set(float64(c.size))
	}
	c.mu.Unlock()
	wg.Done()

	return value, nil
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) Size() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Reset drops every entry. In-flight loaders finish against the dropped
// entries and their waiters retry with a fresh load.
func (c *Cache[V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[V])
	c.size = 0
	metric.CacheSizeBytes.Set(0)
}
