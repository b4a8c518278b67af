package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MayurUbarhande0/recommendations-api/domain"
)

// key format: "recommendation:{user_id}"
const defaultKeyPrefix = "recommendation:"

// RecommendationCache is the distributed cache tier. Values are
// JSON-encoded CacheEntry blobs carrying their own expiry metadata, and
// the redis key TTL tracks the entry TTL so stale blobs get dropped
// server-side as well.
type RecommendationCache struct {
	client *redis.Client
	prefix string
}

func NewRecommendationCache(client *redis.Client) *RecommendationCache {
	return &RecommendationCache{
		client: client,
		prefix: defaultKeyPrefix,
	}
}

func (r *RecommendationCache) key(userID uint64) string {
	return fmt.Sprintf("%s%d", r.prefix, userID)
}

func (r *RecommendationCache) Get(ctx context.Context, userID uint64) (domain.CacheEntry, bool, error) {
	val, err := r.client.Get(ctx, r.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CacheEntry{}, false, nil
		}
		return domain.CacheEntry{}, false, fmt.Errorf("failed to get recommendation from Redis: %w", err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	return entry, true, nil
}

func (r *RecommendationCache) Set(ctx context.Context, userID uint64, entry domain.CacheEntry) error {
	remaining := entry.Remaining(time.Now())
	if remaining <= 0 {
		return nil
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := r.client.Set(ctx, r.key(userID), jsonData, remaining).Err(); err != nil {
		return fmt.Errorf("failed to store recommendation in Redis: %w", err)
	}

	return nil
}

func (r *RecommendationCache) Delete(ctx context.Context, userID uint64) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete recommendation from Redis: %w", err)
	}

	return nil
}
