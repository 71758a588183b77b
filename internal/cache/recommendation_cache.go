package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/procurehq/replenish/internal/config"
	"github.com/procurehq/replenish/internal/domain"
)

const (
	recommendationKeyPrefix = "replenish:recommendation"
	recommendationScanBatch = 100
)

// RecommendationCache caches order recommendations per item. Stale data
// has a bounded lifetime (the TTL); invalidation exists for when the
// inventory snapshot is known to have changed.
type RecommendationCache interface {
	Get(ctx context.Context, itemCode string) (domain.OrderRecommendation, bool, error)
	Set(ctx context.Context, itemCode string, rec domain.OrderRecommendation) error
	Invalidate(ctx context.Context, itemCode string) error
	InvalidateAll(ctx context.Context) error
}

type redisRecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopRecommendationCache struct{}

func NewRecommendationCache(cfg config.CacheConfig) (RecommendationCache, error) {
	if !cfg.Enabled {
		return &noopRecommendationCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisRecommendationCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopRecommendationCache() RecommendationCache {
	return &noopRecommendationCache{}
}

func (c *redisRecommendationCache) Get(ctx context.Context, itemCode string) (domain.OrderRecommendation, bool, error) {
	payload, err := c.client.Get(ctx, recommendationKey(itemCode)).Bytes()
	if err == redis.Nil {
		return domain.OrderRecommendation{}, false, nil
	}
	if err != nil {
		return domain.OrderRecommendation{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var rec domain.OrderRecommendation
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domain.OrderRecommendation{}, false, fmt.Errorf("decode recommendation cache: %w", err)
	}

	return rec, true, nil
}

func (c *redisRecommendationCache) Set(ctx context.Context, itemCode string, rec domain.OrderRecommendation) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode recommendation cache: %w", err)
	}

	if err := c.client.Set(ctx, recommendationKey(itemCode), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisRecommendationCache) Invalidate(ctx context.Context, itemCode string) error {
	return c.client.Del(ctx, recommendationKey(itemCode)).Err()
}

func (c *redisRecommendationCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, recommendationKeyPrefix, recommendationScanBatch)
}

func (n *noopRecommendationCache) Get(ctx context.Context, itemCode string) (domain.OrderRecommendation, bool, error) {
	return domain.OrderRecommendation{}, false, nil
}

func (n *noopRecommendationCache) Set(ctx context.Context, itemCode string, rec domain.OrderRecommendation) error {
	return nil
}

func (n *noopRecommendationCache) Invalidate(ctx context.Context, itemCode string) error {
	return nil
}

func (n *noopRecommendationCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func recommendationKey(itemCode string) string {
	return fmt.Sprintf("%s:%s", recommendationKeyPrefix, itemCode)
}
