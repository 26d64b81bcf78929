package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pricefetch-service/internal/config"
	"pricefetch-service/internal/logger"
	"pricefetch-service/internal/metrics"
)

const (
	simplePriceEndpoint = "/simple/price"
	marketChartEndpoint = "/coins/bitcoin/market_chart/range"
)

// CurrentPrice is the parsed result of the simple-price endpoint for the
// fixed bitcoin/usd pair. LastUpdatedAt is seconds-resolution as reported
// by CoinGecko.
type CurrentPrice struct {
	Price         float64
	LastUpdatedAt int64
}

// Client is a CoinGecko REST API client for the fixed bitcoin/usd pair.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new CoinGecko API client
func NewClient(cfg config.CoinGeckoConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetCurrentPrice fetches the current Bitcoin price in USD together with the
// upstream-reported last-updated timestamp (seconds).
func (c *Client) GetCurrentPrice(ctx context.Context) (*CurrentPrice, error) {
	params := url.Values{}
	params.Set("ids", "bitcoin")
	params.Set("vs_currencies", "usd")
	params.Set("include_last_updated_at", "true")
	params.Set("precision", "3")

	var payload struct {
		Bitcoin struct {
			USD           float64 `json:"usd"`
			LastUpdatedAt int64   `json:"last_updated_at"`
		} `json:"bitcoin"`
	}

	if err := c.doRequest(ctx, simplePriceEndpoint, params, &payload); err != nil {
		return nil, err
	}

	return &CurrentPrice{
		Price:         payload.Bitcoin.USD,
		LastUpdatedAt: payload.Bitcoin.LastUpdatedAt,
	}, nil
}

// GetPriceHistoryRange fetches Bitcoin price history between the given bounds
// (seconds-resolution, CoinGecko's native unit). Points come back as raw
// [timestamp, price] pairs; entries may be short or carry nulls, and callers
// are expected to validate them.
func (c *Client) GetPriceHistoryRange(ctx context.Context, fromSec, toSec int64) ([][]*float64, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("from", strconv.FormatInt(fromSec, 10))
	params.Set("to", strconv.FormatInt(toSec, 10))
	params.Set("precision", "3")

	var payload struct {
		Prices [][]*float64 `json:"prices"`
	}

	if err := c.doRequest(ctx, marketChartEndpoint, params, &payload); err != nil {
		return nil, err
	}

	return payload.Prices, nil
}

// doRequest executes a GET against the CoinGecko API, maps the status code to
// the package error taxonomy and decodes the body into dest.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, dest any) error {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	logger.LogUpstreamRequest(ctx, endpoint)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamError(endpoint, "transport")
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)
	logger.LogUpstreamResponse(ctx, endpoint, resp.StatusCode, duration)
	metrics.RecordUpstreamRequest(endpoint, strconv.Itoa(resp.StatusCode), duration)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.RecordUpstreamError(endpoint, "rate_limited")
		return fmt.Errorf("%w: HTTP 429", ErrRateLimited)
	case resp.StatusCode == http.StatusBadRequest:
		metrics.RecordUpstreamError(endpoint, "bad_request")
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s", ErrBadRequest, string(body))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.RecordUpstreamError(endpoint, "status")
		return fmt.Errorf("%w: HTTP %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		metrics.RecordUpstreamError(endpoint, "decode")
		return fmt.Errorf("%w: failed to decode response: %v", ErrUpstream, err)
	}

	return nil
}
