package geolib

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

const (
	DefaultCacheCapacity = 1000
	DefaultCacheTTL      = 5 * time.Minute
)

type cacheEntry struct {
	value     GeoResult
	expiresAt time.Time
}

// ResultCache is a bounded LRU cache of geolocation results. Each entry
// expires after TTL which is counted from a moment of write: reads bump
// a recency but never prolong a life of the entry.
type ResultCache struct {
	mutex sync.Mutex
	lru   *simplelru.LRU[string, cacheEntry]
	ttl   time.Duration
	now   func() time.Time
}

// Get returns a cached result. Expired entries are purged on access.
func (r *ResultCache) Get(key string) (GeoResult, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, ok := r.lru.Get(key)
	if !ok {
		return GeoResult{}, false
	}

	if r.now().After(entry.expiresAt) {
		r.lru.Remove(key)

		return GeoResult{}, false
	}

	return entry.value, true
}

// Set stores a result. If cache is full, the least recently used entry
// is evicted.
func (r *ResultCache) Set(key string, value GeoResult) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.lru.Add(key, cacheEntry{
		value:     value,
		expiresAt: r.now().Add(r.ttl),
	})
}

func (r *ResultCache) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.lru.Len()
}

// NewResultCache creates a new cache. Zero values of capacity and ttl
// mean defaults.
func NewResultCache(capacity int, ttl time.Duration) (*ResultCache, error) {
	if capacity == 0 {
		capacity = DefaultCacheCapacity
	}

	if ttl == 0 {
		ttl = DefaultCacheTTL
	}

	if ttl < 0 {
		return nil, fmt.Errorf("incorrect cache ttl %v", ttl)
	}

	lru, err := simplelru.NewLRU[string, cacheEntry](capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create lru cache: %w", err)
	}

	return &ResultCache{
		lru: lru,
		ttl: ttl,
		now: time.Now,
	}, nil
}
