package model

import (
	"errors"
	"time"
)

// PricePoint is the persisted price entity. Timestamp is unix epoch
// milliseconds and unique across the store.
type PricePoint struct {
	ID        int64     `json:"-"`
	Timestamp int64     `json:"timestamp"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"-"`
}

// CurrentPriceResponse is the body served by /api/v1/current-price.
type CurrentPriceResponse struct {
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// PriceHistoryResponse is the body served by /api/v1/price-history,
// ordered newest first.
type PriceHistoryResponse struct {
	Prices []PricePoint `json:"prices"`
}

// NormalizeTimestamp converts a raw timestamp to epoch milliseconds. A value
// with exactly 10 decimal digits is seconds-resolution and is multiplied by
// 1000; anything else is assumed to be milliseconds already. The heuristic
// holds until seconds timestamps reach 11 digits (year ~2286).
func NormalizeTimestamp(ts int64) int64 {
	if ts >= 1_000_000_000 && ts < 10_000_000_000 {
		return ts * 1000
	}
	return ts
}

// Validation errors for price history range parameters.
var (
	ErrFromInFuture = errors.New("from_timestamp cannot be in the future")
	ErrToNotAfter   = errors.New("to_timestamp must be greater than from_timestamp")
	ErrToInFuture   = errors.New("to_timestamp cannot be in the future")
)

// PriceHistoryRangeParams holds the bounds of a price-history request.
// Callers pass seconds per the external contract; Normalize converts both
// bounds to milliseconds before validation or use.
type PriceHistoryRangeParams struct {
	FromTimestamp int64
	ToTimestamp   int64
}

// Normalize converts both bounds to epoch milliseconds.
func (p *PriceHistoryRangeParams) Normalize() {
	p.FromTimestamp = NormalizeTimestamp(p.FromTimestamp)
	p.ToTimestamp = NormalizeTimestamp(p.ToTimestamp)
}

// Validate checks the normalized bounds against the current wall clock.
// Call Normalize first.
func (p *PriceHistoryRangeParams) Validate() error {
	now := time.Now().UTC().UnixMilli()

	if p.FromTimestamp > now {
		return ErrFromInFuture
	}
	if p.ToTimestamp <= p.FromTimestamp {
		return ErrToNotAfter
	}
	if p.ToTimestamp > now {
		return ErrToInFuture
	}
	return nil
}
