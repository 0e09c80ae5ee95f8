package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache is a size-bounded in-process cache keyed by string.
type Cache[T any] struct {
	impl *ristretto.Cache[string, T]
	name string
	ttl  time.Duration
}

// Stats is a point-in-time view of cache activity, reported by /health.
type Stats struct {
	Name    string  `json:"name"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	Items   int64   `json:"items"`
	CostKB  float64 `json:"cost_kb"`
}

// New creates a cache whose entries expire after ttl. costFunc sizes values
// against a 16MB budget.
func New[T any](name string, ttl time.Duration, costFunc func(T) int64) (*Cache[T], error) {
	impl, err := ristretto.NewCache(&ristretto.Config[string, T]{
		NumCounters: 1e5,
		MaxCost:     1 << 24,
		BufferItems: 64,
		Metrics:     true,
		Cost:        costFunc,
	})
	if err != nil {
		return nil, err
	}

	return &Cache[T]{impl: impl, name: name, ttl: ttl}, nil
}

// Get retrieves a value from the cache
func (c *Cache[T]) Get(key string) (T, bool) {
	return c.impl.Get(key)
}

// Set stores a value with the cache's default TTL. The cost is computed by
// the cost function given to New.
func (c *Cache[T]) Set(key string, value T) bool {
	return c.impl.SetWithTTL(key, value, 0, c.ttl)
}

// Delete removes a single key.
func (c *Cache[T]) Delete(key string) {
	c.impl.Del(key)
}

// Clear removes all items from the cache
func (c *Cache[T]) Clear() {
	c.impl.Clear()
}

// Wait blocks until buffered writes have been applied.
func (c *Cache[T]) Wait() {
	c.impl.Wait()
}

// Close stops the cache's background goroutines.
func (c *Cache[T]) Close() {
	c.impl.Close()
}

// Stats returns hit and size counters.
func (c *Cache[T]) Stats() Stats {
	m := c.impl.Metrics
	hits, misses := m.Hits(), m.Misses()

	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return Stats{
		Name:    c.name,
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
		Items:   int64(m.KeysAdded() - m.KeysEvicted()),
		CostKB:  float64(m.CostAdded()-m.CostEvicted()) / 1024,
	}
}
