// Package exporter provides caching functionality for Meilisearch metrics.
package exporter

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/fjacquet/meili_admin/meili"
)

const (
	statsCacheKey   = "instance_stats"
	defaultCacheTTL = 1 * time.Minute
)

// StatsCache provides TTL-based caching for instance statistics. It wraps
// patrickmn/go-cache to avoid hitting the /stats endpoint on every
// Prometheus scrape.
//
// Instance statistics change slowly compared to typical scrape intervals
// (15-60 seconds), so caching reduces API calls to once per TTL interval.
//
// Thread-safety: all methods are safe for concurrent use.
type StatsCache struct {
	cache              *cache.Cache
	ttl                time.Duration
	lastCollectionMu   sync.RWMutex
	lastCollectionTime time.Time
}

// NewStatsCache creates a new cache with the specified TTL. The cleanup
// interval is set to 2x TTL. If ttl <= 0, the default of 1 minute is used.
func NewStatsCache(ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &StatsCache{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Get returns the cached statistics, or (nil, false) if the cache entry
// expired or was never set.
func (c *StatsCache) Get() (*meili.Stats, bool) {
	v, found := c.cache.Get(statsCacheKey)
	if !found {
		return nil, false
	}
	stats, ok := v.(*meili.Stats)
	return stats, ok
}

// Set stores fresh statistics and records the collection time.
func (c *StatsCache) Set(stats *meili.Stats) {
	c.cache.Set(statsCacheKey, stats, c.ttl)

	c.lastCollectionMu.Lock()
	c.lastCollectionTime = time.Now()
	c.lastCollectionMu.Unlock()
}

// Flush drops all cached entries. Used after a configuration reload points
// the collector at a different instance.
func (c *StatsCache) Flush() {
	c.cache.Flush()
}

// LastCollectionTime returns when statistics were last fetched from the
// instance. The zero time means no successful collection yet.
func (c *StatsCache) LastCollectionTime() time.Time {
	c.lastCollectionMu.RLock()
	defer c.lastCollectionMu.RUnlock()
	return c.lastCollectionTime
}
