package logger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// StartTimeKey is the context key for start time
	StartTimeKey contextKey = "start_time"
)

var log *logrus.Logger

func init() {
	log = logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	})
	log.SetLevel(logrus.InfoLevel)
}

// GetLogger returns the singleton logger instance
func GetLogger() *logrus.Logger {
	return log
}

// SetLogLevel sets the global log level
func SetLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context) context.Context {
	requestID := uuid.New().String()
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithStartTime adds start time to the context
func WithStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, StartTimeKey, time.Now())
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetStartTime extracts start time from context
func GetStartTime(ctx context.Context) time.Time {
	if startTime, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return startTime
	}
	return time.Time{}
}

// LogHTTPRequest logs HTTP request information
func LogHTTPRequest(ctx context.Context, method, path, userAgent, remoteAddr string) {
	log.WithFields(logrus.Fields{
		"request_id":  GetRequestID(ctx),
		"method":      method,
		"path":        path,
		"user_agent":  userAgent,
		"remote_addr": remoteAddr,
		"event":       "http_request",
	}).Info("HTTP request received")
}

// LogHTTPResponse logs HTTP response information
func LogHTTPResponse(ctx context.Context, statusCode int, responseSize int64) {
	startTime := GetStartTime(ctx)
	var latency time.Duration
	if !startTime.IsZero() {
		latency = time.Since(startTime)
	}

	logger := log.WithFields(logrus.Fields{
		"request_id":    GetRequestID(ctx),
		"status_code":   statusCode,
		"response_size": responseSize,
		"latency_ms":    latency.Milliseconds(),
		"event":         "http_response",
	})

	if statusCode >= 500 {
		logger.Error("HTTP response sent")
	} else if statusCode >= 400 {
		logger.Warn("HTTP response sent")
	} else {
		logger.Info("HTTP response sent")
	}
}

// LogUpstreamRequest logs an outgoing CoinGecko API request
func LogUpstreamRequest(ctx context.Context, endpoint string) {
	log.WithFields(logrus.Fields{
		"request_id": GetRequestID(ctx),
		"endpoint":   endpoint,
		"event":      "upstream_request",
		"service":    "coingecko_client",
	}).Info("Making request to CoinGecko API")
}

// LogUpstreamResponse logs a CoinGecko API response
func LogUpstreamResponse(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	logger := log.WithFields(logrus.Fields{
		"request_id":           GetRequestID(ctx),
		"endpoint":             endpoint,
		"status_code":          statusCode,
		"upstream_duration_ms": duration.Milliseconds(),
		"event":                "upstream_response",
		"service":              "coingecko_client",
	})

	if statusCode >= 500 {
		logger.Error("CoinGecko API response received")
	} else if statusCode >= 400 {
		logger.Warn("CoinGecko API response received")
	} else {
		logger.Info("CoinGecko API response received")
	}
}

// LogCacheOperation logs cache operations
func LogCacheOperation(ctx context.Context, operation, backend, key string, hit bool, duration time.Duration) {
	log.WithFields(logrus.Fields{
		"request_id":  GetRequestID(ctx),
		"operation":   operation,
		"backend":     backend,
		"key":         key,
		"cache_hit":   hit,
		"duration_ms": duration.Milliseconds(),
		"event":       "cache_operation",
		"service":     "cache",
	}).Debug("Cache operation completed")
}

// LogCacheFailure logs a soft cache failure that degrades to a miss
func LogCacheFailure(ctx context.Context, operation, key string, err error) {
	log.WithFields(logrus.Fields{
		"request_id": GetRequestID(ctx),
		"operation":  operation,
		"key":        key,
		"error":      err.Error(),
		"event":      "cache_failure",
		"service":    "cache",
	}).Warn("Cache operation failed, continuing without cache")
}

// LogStoreOperation logs persistence operations
func LogStoreOperation(ctx context.Context, operation string, rows int64, duration time.Duration, err error) {
	fields := logrus.Fields{
		"request_id":  GetRequestID(ctx),
		"operation":   operation,
		"rows":        rows,
		"duration_ms": duration.Milliseconds(),
		"event":       "store_operation",
		"service":     "price_store",
	}

	if err != nil {
		fields["error"] = err.Error()
		log.WithFields(fields).Error("Store operation failed")
		return
	}
	log.WithFields(fields).Debug("Store operation completed")
}

// LogServiceEvent logs general service events
func LogServiceEvent(ctx context.Context, event string, message string, fields map[string]interface{}) {
	logFields := logrus.Fields{
		"request_id": GetRequestID(ctx),
		"event":      event,
	}

	for k, v := range fields {
		logFields[k] = v
	}

	log.WithFields(logFields).Info(message)
}
