package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache is a Redis implementation of the DedupCache interface, for
// multi-instance deployments where the dedup window must be shared.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

const redisKeyPrefix = "triage:dedup:"

// NewRedisCache creates a new Redis dedup cache
func NewRedisCache(addr string, db int, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		logger: logger,
	}, nil
}

// Has reports whether an unexpired entry exists for the id
func (c *RedisCache) Has(ctx context.Context, id string) (bool, error) {
	n, err := c.client.Exists(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}

// Set records an id with a time-to-live; Redis handles expiry natively
func (c *RedisCache) Set(ctx context.Context, id string, ttl time.Duration) error {
	if err := c.client.Set(ctx, redisKeyPrefix+id, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete removes an entry
func (c *RedisCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Cleanup is a no-op: Redis evicts expired keys itself
func (c *RedisCache) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the Redis connection
func (c *RedisCache) Stop() {
	if err := c.client.Close(); err != nil {
		c.logger.Warn("Failed to close Redis client", zap.Error(err))
	}
}
