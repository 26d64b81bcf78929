package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"pricefetch-service/internal/client/coingecko"
	"pricefetch-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	current    *model.CurrentPriceResponse
	currentErr error
	history    *model.PriceHistoryResponse
	historyErr error
	lastFrom   int64
	lastTo     int64
}

func (s *stubService) GetCurrentPrice(context.Context) (*model.CurrentPriceResponse, error) {
	return s.current, s.currentErr
}

func (s *stubService) GetPriceHistoryRange(_ context.Context, from, to int64) (*model.PriceHistoryResponse, error) {
	s.lastFrom = from
	s.lastTo = to
	return s.history, s.historyErr
}

func doRequest(t *testing.T, svc *stubService, target string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewPriceHandler(svc)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.NewRouter().ServeHTTP(rec, req)
	return rec
}

func TestHandleCurrentPrice(t *testing.T) {
	svc := &stubService{current: &model.CurrentPriceResponse{Price: 105487.095, Timestamp: 1749994297000}}

	rec := doRequest(t, svc, "/api/v1/current-price")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body model.CurrentPriceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 105487.095, body.Price)
	assert.Equal(t, int64(1749994297000), body.Timestamp)
}

func TestHandleCurrentPriceErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "generic failure maps to 500",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "upstream error maps to 500",
			err:        fmt.Errorf("fetch current price: %w", coingecko.ErrUpstream),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "rate limit surfaces as 429",
			err:        fmt.Errorf("fetch current price: %w", coingecko.ErrRateLimited),
			wantStatus: http.StatusTooManyRequests,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, &stubService{currentErr: tt.err}, "/api/v1/current-price")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), "Failed to fetch current price")
		})
	}
}

func TestHandlePriceHistory(t *testing.T) {
	svc := &stubService{history: &model.PriceHistoryResponse{Prices: []model.PricePoint{
		{Timestamp: 1749981787521, Price: 104941.085},
		{Timestamp: 1749978205180, Price: 105211.979},
	}}}

	nowSec := time.Now().UTC().Unix()
	target := fmt.Sprintf("/api/v1/price-history?from_timestamp=%d&to_timestamp=%d", nowSec-7200, nowSec-3600)
	rec := doRequest(t, svc, target)

	require.Equal(t, http.StatusOK, rec.Code)

	var body model.PriceHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Prices, 2)
	assert.Equal(t, int64(1749981787521), body.Prices[0].Timestamp)

	// Bounds handed to the service already normalized to milliseconds
	assert.Equal(t, (nowSec-7200)*1000, svc.lastFrom)
	assert.Equal(t, (nowSec-3600)*1000, svc.lastTo)
}

func TestHandlePriceHistoryValidation(t *testing.T) {
	nowSec := time.Now().UTC().Unix()

	tests := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{
			name:    "missing parameters",
			query:   "",
			wantMsg: "from_timestamp and to_timestamp are required",
		},
		{
			name:    "non-integer from",
			query:   "from_timestamp=abc&to_timestamp=" + strconv.FormatInt(nowSec, 10),
			wantMsg: "from_timestamp must be an integer",
		},
		{
			name:    "from equal to to",
			query:   fmt.Sprintf("from_timestamp=%d&to_timestamp=%d", nowSec-100, nowSec-100),
			wantMsg: "to_timestamp must be greater than from_timestamp",
		},
		{
			name:    "from in the future",
			query:   fmt.Sprintf("from_timestamp=%d&to_timestamp=%d", nowSec+3600, nowSec+7200),
			wantMsg: "from_timestamp cannot be in the future",
		},
		{
			name:    "to in the future",
			query:   fmt.Sprintf("from_timestamp=%d&to_timestamp=%d", nowSec-3600, nowSec+3600),
			wantMsg: "to_timestamp cannot be in the future",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{history: &model.PriceHistoryResponse{}}
			rec := doRequest(t, svc, "/api/v1/price-history?"+tt.query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
		})
	}
}

func TestHandlePriceHistoryToEqualNowAccepted(t *testing.T) {
	svc := &stubService{history: &model.PriceHistoryResponse{Prices: []model.PricePoint{}}}

	nowSec := time.Now().UTC().Unix()
	target := fmt.Sprintf("/api/v1/price-history?from_timestamp=%d&to_timestamp=%d", nowSec-3600, nowSec)
	rec := doRequest(t, svc, target)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlePriceHistoryServiceError(t *testing.T) {
	svc := &stubService{historyErr: errors.New("query price range: connection refused")}

	nowSec := time.Now().UTC().Unix()
	target := fmt.Sprintf("/api/v1/price-history?from_timestamp=%d&to_timestamp=%d", nowSec-7200, nowSec-3600)
	rec := doRequest(t, svc, target)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to fetch price history")
}

func TestHandleHealth(t *testing.T) {
	rec := doRequest(t, &stubService{}, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewPriceHandler(&stubService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/current-price", nil)
	rec := httptest.NewRecorder()

	h.NewRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
