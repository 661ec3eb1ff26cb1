package staticdata

import (
	"context"

	"github.com/couchcryptid/groundwater-dashboard/internal/cache"
	"github.com/couchcryptid/groundwater-dashboard/internal/observability"
)

// CachedSource wraps a Source with an in-memory LRU cache. Failed fetches
// are not cached.
type CachedSource struct {
	inner   Source
	cache   *cache.LRU[[]byte]
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a source. metrics may be nil.
func NewCachedSource(inner Source, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   cache.NewLRU[[]byte](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if data, ok := c.cache.Get(name); ok {
		c.record("hit")
		return data, nil
	}
	c.record("miss")

	data, err := c.inner.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	c.cache.Put(name, data)
	return data, nil
}

func (c *CachedSource) record(result string) {
	if c.metrics != nil {
		c.metrics.DocumentCache.WithLabelValues(result).Inc()
	}
}
