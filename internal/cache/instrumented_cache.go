package cache

import (
	"context"
	"time"

	"pricefetch-service/internal/metrics"
)

// InstrumentedCache wraps any Cache implementation with metrics
type InstrumentedCache struct {
	cache   Cache
	backend string
}

// NewInstrumentedCache creates a new instrumented cache wrapper
func NewInstrumentedCache(cache Cache, backend string) *InstrumentedCache {
	return &InstrumentedCache{
		cache:   cache,
		backend: backend,
	}
}

// Backend returns the name of the wrapped backend
func (ic *InstrumentedCache) Backend() string {
	return ic.backend
}

// Get deserializes the payload stored under key into dest
func (ic *InstrumentedCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordCacheOperation(ic.backend, "get", time.Since(start))
	}()

	found, err := ic.cache.Get(ctx, key, dest)

	switch {
	case err != nil:
		metrics.RecordCacheError(ic.backend, "get")
	case found:
		metrics.RecordCacheHit(ic.backend)
	default:
		metrics.RecordCacheMiss(ic.backend)
	}

	return found, err
}

// Set serializes value and stores it under key with the configured TTL
func (ic *InstrumentedCache) Set(ctx context.Context, key string, value any) error {
	start := time.Now()
	defer func() {
		metrics.RecordCacheOperation(ic.backend, "set", time.Since(start))
	}()

	err := ic.cache.Set(ctx, key, value)
	if err != nil {
		metrics.RecordCacheError(ic.backend, "set")
	}
	return err
}

// Delete removes the key if present
func (ic *InstrumentedCache) Delete(ctx context.Context, key string) error {
	start := time.Now()
	defer func() {
		metrics.RecordCacheOperation(ic.backend, "delete", time.Since(start))
	}()

	err := ic.cache.Delete(ctx, key)
	if err != nil {
		metrics.RecordCacheError(ic.backend, "delete")
	}
	return err
}

// Close closes the wrapped cache
func (ic *InstrumentedCache) Close() error {
	return ic.cache.Close()
}
