package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores JSON payloads in Redis with a fixed per-key TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis-backed cache instance
func NewRedisCache(config Config) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: rdb,
		ttl:    config.TTL,
	}, nil
}

// Get deserializes the payload stored under key into dest
func (rc *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := rc.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil // Key doesn't exist
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cached value: %w", err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return true, nil
}

// Set serializes value and stores it under key with the configured TTL
func (rc *RedisCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	return rc.client.Set(ctx, key, string(data), rc.ttl).Err()
}

// Delete removes the key if present
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, key).Err()
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// NewCacheFromConfig creates a cache instance based on configuration
func NewCacheFromConfig(backend string, config Config) (Cache, error) {
	var cache Cache
	var err error

	switch strings.ToLower(backend) {
	case "memory", "":
		cache = NewMemoryCache(config)
	case "redis":
		cache, err = NewRedisCache(config)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", backend)
	}

	// Wrap with instrumented cache for metrics
	return NewInstrumentedCache(cache, strings.ToLower(backend)), nil
}
