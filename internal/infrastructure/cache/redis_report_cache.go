package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "stats:report:"

// RedisReportCache implements ReportCache using Redis. Suitable for
// deployments where multiple instances serve the dashboard and must share
// cached reports.
type RedisReportCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisReportCache creates a new Redis-based report cache
func NewRedisReportCache(cfg RedisConfig) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisReportCache{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}, nil
}

// NewRedisReportCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisReportCacheWithClient(client *redis.Client, keyPrefix string) *RedisReportCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisReportCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached payload for the key, with a hit flag
func (c *RedisReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached report: %w", err)
	}
	return payload, true, nil
}

// Set stores the payload under the key with the given TTL
func (c *RedisReportCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// Clear removes every cached report. Clearing an empty cache succeeds.
func (c *RedisReportCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached reports: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear cached reports: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

// Ensure RedisReportCache implements ReportCache
var _ ReportCache = (*RedisReportCache)(nil)
