package domain

import (
	"time"
)

// RecommendationResult is the computed recommendation for one user.
// Immutable once produced, safe to share across concurrent readers.
type RecommendationResult struct {
	Weightage             float64  `json:"weightage"`
	SearchWeight          float64  `json:"search_weight"`
	PurchaseWeight        float64  `json:"purchase_weight"`
	RecommendedCategories []string `json:"recommended_categories"`
	ExploreCategories     []string `json:"explore_categories"`
	SearchCount           int      `json:"search_count"`
	PurchaseCount         int      `json:"purchase_count"`
}

// CacheTier names the cache level that satisfied a lookup.
type CacheTier string

const (
	TierLocal       CacheTier = "local"
	TierDistributed CacheTier = "distributed"
	TierNone        CacheTier = "none"
)

// CacheEntry wraps a result with its expiry metadata. An entry must never
// be served past ComputedAt + TTL, regardless of which tier holds it.
type CacheEntry struct {
	Result     RecommendationResult `json:"result"`
	ComputedAt time.Time            `json:"computed_at"`
	TTL        time.Duration        `json:"ttl"`
}

func NewCacheEntry(result RecommendationResult, computedAt time.Time, ttl time.Duration) CacheEntry {
	return CacheEntry{
		Result:     result,
		ComputedAt: computedAt,
		TTL:        ttl,
	}
}

func (e CacheEntry) ExpiresAt() time.Time {
	return e.ComputedAt.Add(e.TTL)
}

func (e CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt())
}

// Remaining returns how much of the TTL is left at now. Zero or negative
// means the entry is already expired.
func (e CacheEntry) Remaining(now time.Time) time.Duration {
	return e.ExpiresAt().Sub(now)
}

// BatchItem is the per-user outcome of a batch lookup. Exactly one of
// Result or Err is set.
type BatchItem struct {
	UserID uint64
	Result *RecommendationResult
	Tier   CacheTier
	Err    error
}

// BatchResult aggregates a batch lookup. Items preserves the input order
// of the requested user ids.
type BatchResult struct {
	Successful int
	Failed     int
	Items      []BatchItem
}
