package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"jaikod-scoring/utils"
)

const (
	distributionKeyPrefix = "scoring:dist:"
	regionMultipliersKey  = "scoring:regions"
)

// Cache is a byte-oriented key/value cache with expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ConnectRedis initialises a Redis client from a redis:// URL or host:port.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: parse url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// RedisCache adapts a go-redis client to Cache.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// CachedReference is a read-through cache in front of a ReferenceSource.
// Cache failures are logged and the source is queried directly.
type CachedReference struct {
	source ReferenceSource
	cache  Cache
	ttl    time.Duration
	logger *utils.Logger
}

func NewCachedReference(source ReferenceSource, cache Cache, ttl time.Duration, logger *utils.Logger) *CachedReference {
	return &CachedReference{source: source, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedReference) Distribution(ctx context.Context, category string) ([]float64, error) {
	key := distributionKeyPrefix + categoryKey(category)

	var cached []float64
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	dist, err := c.source.Distribution(ctx, category)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, dist)
	return dist, nil
}

func (c *CachedReference) RegionMultipliers(ctx context.Context) (map[string]float64, error) {
	var cached map[string]float64
	if c.load(ctx, regionMultipliersKey, &cached) {
		return cached, nil
	}

	m, err := c.source.RegionMultipliers(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, regionMultipliersKey, m)
	return m, nil
}

func (c *CachedReference) load(ctx context.Context, key string, dst any) bool {
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("[cache] Get %s failed: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("[cache] Discarding corrupt entry %s: %v", key, err)
		return false
	}
	c.logger.Debug("[cache] Hit %s", key)
	return true
}

func (c *CachedReference) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("[cache] Encode %s failed: %v", key, err)
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("[cache] Set %s failed: %v", key, err)
	}
}
