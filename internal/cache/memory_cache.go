package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is an in-memory Cache implementation with time-based expiry.
// Used as the development/test backend and as a fallback when Redis is not
// configured.
type MemoryCache struct {
	mutex   sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemoryCache creates a new in-memory cache instance
func NewMemoryCache(config Config) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     config.TTL,
	}
}

// Get deserializes the payload stored under key into dest
func (mc *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	mc.mutex.RLock()
	entry, exists := mc.entries[key]
	mc.mutex.RUnlock()

	if !exists || time.Now().After(entry.expiresAt) {
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return true, nil
}

// Set serializes value and stores it under key with the configured TTL
func (mc *MemoryCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.entries[key] = memoryEntry{
		data:      data,
		expiresAt: time.Now().Add(mc.ttl),
	}
	return nil
}

// Delete removes the key if present
func (mc *MemoryCache) Delete(_ context.Context, key string) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	delete(mc.entries, key)
	return nil
}

// Size returns the number of entries, including expired ones not yet swept
func (mc *MemoryCache) Size() int {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	return len(mc.entries)
}

// Close cleans up resources (no-op for in-memory)
func (mc *MemoryCache) Close() error {
	return nil
}
