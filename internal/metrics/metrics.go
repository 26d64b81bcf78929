package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefetch_http_requests_total",
			Help: "The total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricefetch_http_request_duration_seconds",
			Help:    "The HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefetch_cache_hits_total",
			Help: "The total number of cache hits",
		},
		[]string{"cache_backend"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefetch_cache_misses_total",
			Help: "The total number of cache misses",
		},
		[]string{"cache_backend"},
	)

	CacheErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefetch_cache_errors_total",
			Help: "The total number of cache errors treated as misses",
		},
		[]string{"cache_backend", "operation"},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricefetch_cache_operation_duration_seconds",
			Help:    "The cache operation latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"cache_backend", "operation"},
	)

	// CoinGecko API metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefetch_coingecko_requests_total",
			Help: "The total number of CoinGecko API requests",
		},
		[]string{"endpoint", "status_code"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricefetch_coingecko_request_duration_seconds",
			Help:    "The CoinGecko API request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	UpstreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefetch_coingecko_errors_total",
			Help: "The total number of CoinGecko API errors",
		},
		[]string{"endpoint", "error_type"},
	)

	// Store metrics
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefetch_store_operations_total",
			Help: "The total number of price store operations",
		},
		[]string{"operation", "status"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricefetch_store_operation_duration_seconds",
			Help:    "The price store operation latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Current price info
	CurrentPrice = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricefetch_current_price_usd",
			Help: "The most recently fetched Bitcoin price in USD",
		},
	)

	// Service info
	ServiceInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pricefetch_service_info",
			Help: "Information about the PriceFetch service",
		},
		[]string{"version", "cache_backend"},
	)
)

// RecordHTTPRequest records metrics for an HTTP request
func RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCacheHit records a cache hit
func RecordCacheHit(backend string) {
	CacheHitsTotal.WithLabelValues(backend).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(backend string) {
	CacheMissesTotal.WithLabelValues(backend).Inc()
}

// RecordCacheError records a cache error degraded to a miss
func RecordCacheError(backend, operation string) {
	CacheErrorsTotal.WithLabelValues(backend, operation).Inc()
}

// RecordCacheOperation records the duration of a cache operation
func RecordCacheOperation(backend, operation string, duration time.Duration) {
	CacheOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordUpstreamRequest records a CoinGecko API request
func RecordUpstreamRequest(endpoint, statusCode string, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(endpoint, statusCode).Inc()
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordUpstreamError records a CoinGecko API error by type
func RecordUpstreamError(endpoint, errorType string) {
	UpstreamErrorsTotal.WithLabelValues(endpoint, errorType).Inc()
}

// RecordStoreOperation records a price store operation
func RecordStoreOperation(operation, status string, duration time.Duration) {
	StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateCurrentPrice updates the current price gauge
func UpdateCurrentPrice(price float64) {
	CurrentPrice.Set(price)
}

// SetServiceInfo sets the service information metric
func SetServiceInfo(version, cacheBackend string) {
	ServiceInfo.WithLabelValues(version, cacheBackend).Set(1)
}
