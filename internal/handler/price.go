package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"pricefetch-service/internal/client/coingecko"
	"pricefetch-service/internal/logger"
	"pricefetch-service/internal/middleware"
	"pricefetch-service/internal/model"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PriceServiceInterface defines the interface for price service operations
type PriceServiceInterface interface {
	GetCurrentPrice(ctx context.Context) (*model.CurrentPriceResponse, error)
	GetPriceHistoryRange(ctx context.Context, fromTimestamp, toTimestamp int64) (*model.PriceHistoryResponse, error)
}

// PriceHandler handles HTTP requests for the price endpoints
type PriceHandler struct {
	priceService PriceServiceInterface
}

// NewPriceHandler creates a new price handler instance
func NewPriceHandler(priceService PriceServiceInterface) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
	}
}

// HandleCurrentPrice handles GET /api/v1/current-price
func (h *PriceHandler) HandleCurrentPrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response, err := h.priceService.GetCurrentPrice(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "current_price_error", fmt.Sprintf("Failed to fetch current price: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// HandlePriceHistory handles GET /api/v1/price-history.
// Query parameters are seconds-resolution unix timestamps per the external
// contract; response timestamps are milliseconds, newest first.
func (h *PriceHandler) HandlePriceHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := parseRangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params.Normalize()
	if err := params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	response, err := h.priceService.GetPriceHistoryRange(ctx, params.FromTimestamp, params.ToTimestamp)
	if err != nil {
		h.writeServiceError(ctx, w, "price_history_error", fmt.Sprintf("Failed to fetch price history: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// HandleHealth handles the health check endpoint
func (h *PriceHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "pricefetch-service",
	})
}

// parseRangeParams extracts the required integer query parameters
func parseRangeParams(r *http.Request) (*model.PriceHistoryRangeParams, error) {
	fromRaw := r.URL.Query().Get("from_timestamp")
	toRaw := r.URL.Query().Get("to_timestamp")

	if fromRaw == "" || toRaw == "" {
		return nil, errors.New("from_timestamp and to_timestamp are required")
	}

	from, err := strconv.ParseInt(fromRaw, 10, 64)
	if err != nil {
		return nil, errors.New("from_timestamp must be an integer unix timestamp")
	}

	to, err := strconv.ParseInt(toRaw, 10, 64)
	if err != nil {
		return nil, errors.New("to_timestamp must be an integer unix timestamp")
	}

	return &model.PriceHistoryRangeParams{FromTimestamp: from, ToTimestamp: to}, nil
}

// writeServiceError maps a service failure to an HTTP status. Rate limiting
// from upstream is surfaced as 429 rather than flattened to 500.
func (h *PriceHandler) writeServiceError(ctx context.Context, w http.ResponseWriter, event, message string, err error) {
	logger.GetLogger().WithFields(map[string]interface{}{
		"request_id": logger.GetRequestID(ctx),
		"error":      err.Error(),
		"event":      event,
	}).Error("Price request failed")

	status := http.StatusInternalServerError
	if errors.Is(err, coingecko.ErrRateLimited) {
		status = http.StatusTooManyRequests
	}
	writeError(w, status, message)
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.GetLogger().WithField("error", err.Error()).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    status,
			"message": message,
		},
	})
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter builds the HTTP route table
func (h *PriceHandler) NewRouter() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/current-price", h.HandleCurrentPrice).Methods(http.MethodGet)
	api.HandleFunc("/price-history", h.HandlePriceHistory).Methods(http.MethodGet)

	r.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

// CreateServer creates an HTTP server with the middleware chain applied
func CreateServer(handler *PriceHandler, port string) *http.Server {
	var h http.Handler = handler.NewRouter()
	h = corsMiddleware(h)
	h = middleware.LoggingMiddleware(h)
	h = middleware.MetricsMiddleware(h)

	return &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: h,
	}
}
