package service

import (
	"context"
	"fmt"

	"pricefetch-service/internal/cache"
	"pricefetch-service/internal/client/coingecko"
	"pricefetch-service/internal/logger"
	"pricefetch-service/internal/metrics"
	"pricefetch-service/internal/model"
)

const currentPriceCacheKey = "bitcoin_current_price"

// UpstreamClient defines the interface for the external price API
type UpstreamClient interface {
	GetCurrentPrice(ctx context.Context) (*coingecko.CurrentPrice, error)
	GetPriceHistoryRange(ctx context.Context, fromSec, toSec int64) ([][]*float64, error)
}

// Store defines the interface for the persistent price gateway
type Store interface {
	InsertPoint(ctx context.Context, timestampMs int64, price float64) (*model.PricePoint, error)
	InsertBatch(ctx context.Context, points []model.PricePoint) (int64, error)
	QueryRange(ctx context.Context, fromMs, toMs int64) ([]model.PricePoint, error)
}

// PriceService coordinates cache, store and upstream for price reads. Lookup
// order is cache, then upstream with a store write-through; responses are
// always built from persisted state, never from the raw upstream payload.
type PriceService struct {
	upstream   UpstreamClient
	store      Store
	priceCache cache.Cache
}

// NewPriceService creates a new price service instance
func NewPriceService(upstream UpstreamClient, store Store, priceCache cache.Cache) *PriceService {
	return &PriceService{
		upstream:   upstream,
		store:      store,
		priceCache: priceCache,
	}
}

// GetCurrentPrice returns the current Bitcoin price, served from cache when a
// live entry exists, otherwise fetched from upstream, persisted, and cached.
func (s *PriceService) GetCurrentPrice(ctx context.Context) (*model.CurrentPriceResponse, error) {
	var cached model.CurrentPriceResponse
	if found := s.cacheGet(ctx, currentPriceCacheKey, &cached); found {
		return &cached, nil
	}

	current, err := s.upstream.GetCurrentPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch current price: %w", err)
	}

	timestampMs := model.NormalizeTimestamp(current.LastUpdatedAt)

	// Response built from the persisted row so it reflects durable state
	stored, err := s.store.InsertPoint(ctx, timestampMs, current.Price)
	if err != nil {
		return nil, fmt.Errorf("persist current price: %w", err)
	}

	response := &model.CurrentPriceResponse{
		Price:     stored.Price,
		Timestamp: stored.Timestamp,
	}

	metrics.UpdateCurrentPrice(stored.Price)
	s.cacheSet(ctx, currentPriceCacheKey, response)

	return response, nil
}

// GetPriceHistoryRange returns price points between the given bounds, newest
// first. Bounds may arrive in seconds or milliseconds; both normalize to the
// same internal millisecond range and therefore the same cache key.
func (s *PriceService) GetPriceHistoryRange(ctx context.Context, fromTimestamp, toTimestamp int64) (*model.PriceHistoryResponse, error) {
	fromMs := model.NormalizeTimestamp(fromTimestamp)
	toMs := model.NormalizeTimestamp(toTimestamp)

	cacheKey := fmt.Sprintf("bitcoin_price_range_%d_%d", fromMs, toMs)

	var cached model.PriceHistoryResponse
	if found := s.cacheGet(ctx, cacheKey, &cached); found {
		return &cached, nil
	}

	// CoinGecko's native resolution is seconds
	raw, err := s.upstream.GetPriceHistoryRange(ctx, fromMs/1000, toMs/1000)
	if err != nil {
		return nil, fmt.Errorf("fetch price history: %w", err)
	}

	valid := validatePoints(ctx, raw)
	if len(valid) > 0 {
		if _, err := s.store.InsertBatch(ctx, valid); err != nil {
			return nil, fmt.Errorf("persist price history: %w", err)
		}
	}

	// Re-read from the store so the response reflects the canonical
	// deduplicated view in descending-timestamp order.
	points, err := s.store.QueryRange(ctx, fromMs, toMs)
	if err != nil {
		return nil, fmt.Errorf("read price history: %w", err)
	}
	if points == nil {
		points = []model.PricePoint{}
	}

	response := &model.PriceHistoryResponse{Prices: points}
	s.cacheSet(ctx, cacheKey, response)

	return response, nil
}

// validatePoints filters the raw upstream payload down to well-formed
// [timestamp, price] pairs. Malformed entries are dropped without failing
// the whole fetch.
func validatePoints(ctx context.Context, raw [][]*float64) []model.PricePoint {
	valid := make([]model.PricePoint, 0, len(raw))
	dropped := 0

	for _, pair := range raw {
		if len(pair) < 2 || pair[0] == nil || pair[1] == nil {
			dropped++
			continue
		}
		valid = append(valid, model.PricePoint{
			Timestamp: model.NormalizeTimestamp(int64(*pair[0])),
			Price:     *pair[1],
		})
	}

	if dropped > 0 {
		logger.LogServiceEvent(ctx, "points_dropped", "Dropped malformed upstream price points", map[string]interface{}{
			"dropped": dropped,
			"kept":    len(valid),
		})
	}

	return valid
}

// cacheGet reads a cached payload, treating any cache error as a miss.
func (s *PriceService) cacheGet(ctx context.Context, key string, dest any) bool {
	found, err := s.priceCache.Get(ctx, key, dest)
	if err != nil {
		logger.LogCacheFailure(ctx, "get", key, err)
		return false
	}
	return found
}

// cacheSet writes a payload through to the cache; failures are soft.
func (s *PriceService) cacheSet(ctx context.Context, key string, value any) {
	if err := s.priceCache.Set(ctx, key, value); err != nil {
		logger.LogCacheFailure(ctx, "set", key, err)
	}
}
