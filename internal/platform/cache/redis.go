package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// registryKey tracks every active cache key in a redis set. Prefix
// invalidation walks the registry instead of relying on wildcard DEL
// semantics, which keeps the behavior identical to the memory driver.
const registryKey = "rate_cache:keys"

// RedisCache is a redis-backed RateCache.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisCache creates a cache on top of an existing redis client.
func NewRedisCache(client *redis.Client, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis get failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return nil, false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, value, ttl)
	pipe.SAdd(ctx, registryKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("redis set failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.SRem(ctx, registryKey, keysToMembers(keys)...)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("redis invalidate failed", slog.String("error", err.Error()))
	}
}

func (c *RedisCache) InvalidatePrefix(ctx context.Context, prefix string) {
	members, err := c.client.SMembers(ctx, registryKey).Result()
	if err != nil {
		c.logger.Warn("redis registry read failed", slog.String("error", err.Error()))
		return
	}
	var matched []string
	for _, member := range members {
		if strings.HasPrefix(member, prefix) {
			matched = append(matched, member)
		}
	}
	c.Invalidate(ctx, matched...)
}

func (c *RedisCache) Contains(ctx context.Context, key string) bool {
	count, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false
	}
	return count > 0
}

func (c *RedisCache) Driver() string {
	return "redis"
}

func keysToMembers(keys []string) []interface{} {
	members := make([]interface{}, len(keys))
	for i, key := range keys {
		members[i] = key
	}
	return members
}
