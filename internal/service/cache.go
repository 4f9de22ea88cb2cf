package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/gridiron-metrics/internal/metrics"
	"github.com/yourusername/gridiron-metrics/internal/models"
)

// CacheKey identifies one computed report. Version is the dataset snapshot the
// report was computed from, so a pass that finishes after a refresh cannot
// shadow reports for the new snapshot.
type CacheKey struct {
	Report  string
	Filter  models.Filter
	Version uint64
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%s|v=%d", k.Report, k.Filter.Key(), k.Version)
}

// ResultCache keeps computed reports until their TTL expires or the season's
// data is refreshed.
type ResultCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewResultCache creates a new result cache
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get retrieves a cached report
func (rc *ResultCache) Get(key CacheKey) (any, bool) {
	v, found := rc.cache.Get(key.String())

	rc.mu.Lock()
	if found {
		rc.hitCount++
	} else {
		rc.missCount++
	}
	ratio := rc.hitRatioLocked()
	rc.mu.Unlock()

	metrics.UpdateCacheHitRatio(ratio)
	return v, found
}

// Set stores a report
func (rc *ResultCache) Set(key CacheKey, report any) {
	rc.cache.Set(key.String(), report, rc.ttl)
}

// Invalidate removes every cached report for season and returns how many
// entries were dropped.
func (rc *ResultCache) Invalidate(season int) int {
	prefix := fmt.Sprintf("%d|", season)
	dropped := 0
	for k := range rc.cache.Items() {
		_, filterKey, ok := strings.Cut(k, ":")
		if ok && strings.HasPrefix(filterKey, prefix) {
			rc.cache.Delete(k)
			dropped++
		}
	}
	return dropped
}

// Flush drops every cached report.
func (rc *ResultCache) Flush() {
	rc.cache.Flush()
}

// Stats returns cache statistics
func (rc *ResultCache) Stats() (hits, misses uint64, items int) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.hitCount, rc.missCount, rc.cache.ItemCount()
}

func (rc *ResultCache) hitRatioLocked() float64 {
	total := rc.hitCount + rc.missCount
	if total == 0 {
		return 0
	}
	return float64(rc.hitCount) / float64(total)
}
