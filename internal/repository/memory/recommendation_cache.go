package memory

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/MayurUbarhande0/recommendations-api/domain"
)

// RecommendationCache is the per-process first tier: a bounded LRU with a
// cache-wide TTL that is deliberately shorter than the distributed tier's
// freshness window. The library handles eviction and locking; entry-level
// expiry is still enforced by the coordinator via CacheEntry.Expired.
type RecommendationCache struct {
	cache *expirable.LRU[uint64, domain.CacheEntry]
}

func NewRecommendationCache(maxEntries int, ttl time.Duration) *RecommendationCache {
	return &RecommendationCache{
		cache: expirable.NewLRU[uint64, domain.CacheEntry](maxEntries, nil, ttl),
	}
}

func (c *RecommendationCache) Get(userID uint64) (domain.CacheEntry, bool) {
	return c.cache.Get(userID)
}

func (c *RecommendationCache) Set(userID uint64, entry domain.CacheEntry) {
	c.cache.Add(userID, entry)
}

func (c *RecommendationCache) Delete(userID uint64) {
	c.cache.Remove(userID)
}

// Len reports the current entry count, used by tests and debugging.
func (c *RecommendationCache) Len() int {
	return c.cache.Len()
}
