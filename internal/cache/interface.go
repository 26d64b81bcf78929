package cache

import (
	"context"
	"time"
)

// Cache is a string-keyed store of JSON-serializable payloads with a fixed
// TTL applied on every Set. A missing or expired key is reported as absent,
// not as an error.
type Cache interface {
	// Get deserializes the payload stored under key into dest. The second
	// return value reports whether a live entry was found.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set serializes value and stores it under key with the configured TTL,
	// overwriting any existing entry and resetting its expiry.
	Set(ctx context.Context, key string, value any) error

	// Delete removes the key if present; deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error

	// Close closes any connections and cleans up resources
	Close() error
}

// Config holds configuration for cache implementations
type Config struct {
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}
