package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricefetch-service/internal/cache"
	"pricefetch-service/internal/client/coingecko"
	"pricefetch-service/internal/config"
	"pricefetch-service/internal/handler"
	"pricefetch-service/internal/logger"
	"pricefetch-service/internal/metrics"
	"pricefetch-service/internal/service"
	"pricefetch-service/internal/store"

	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	connectAttempts = 5
	connectDelay    = 2 * time.Second
)

func main() {
	log.Println("Starting PriceFetch service...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging
	logger.SetLogLevel(cfg.App.LogLevel)
	structuredLogger := logger.GetLogger()

	ctx := context.Background()

	structuredLogger.Info("Initializing service components...")

	// Connect to Postgres with startup retries
	var pool *pgxpool.Pool
	err = retry.Do(
		func() error {
			var connectErr error
			pool, connectErr = store.NewPool(ctx, cfg.DatabaseURL())
			return connectErr
		},
		retry.Attempts(connectAttempts),
		retry.Delay(connectDelay),
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			structuredLogger.WithField("attempt", n+1).WithField("error", err.Error()).
				Warn("Postgres connection failed, retrying")
		}),
	)
	if err != nil {
		structuredLogger.WithField("error", err.Error()).Fatal("Failed to connect to Postgres")
	}
	defer pool.Close()

	priceStore := store.NewPriceStore(pool)

	// Create cache based on configuration, also with startup retries so the
	// service survives Redis coming up after it
	cacheConfig := cache.Config{
		TTL:           cfg.Cache.TTL,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	}

	var priceCache cache.Cache
	err = retry.Do(
		func() error {
			var cacheErr error
			priceCache, cacheErr = cache.NewCacheFromConfig(cfg.Cache.Backend, cacheConfig)
			return cacheErr
		},
		retry.Attempts(connectAttempts),
		retry.Delay(connectDelay),
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			structuredLogger.WithField("attempt", n+1).WithField("error", err.Error()).
				Warn("Cache initialization failed, retrying")
		}),
	)
	if err != nil {
		structuredLogger.WithField("error", err.Error()).Fatal("Failed to create cache")
	}
	defer priceCache.Close()

	structuredLogger.WithField("backend", cfg.Cache.Backend).Info("Cache initialized successfully")

	// Set service info metrics
	metrics.SetServiceInfo("1.0.0", cfg.Cache.Backend)

	// Create upstream client and orchestration service
	upstream := coingecko.NewClient(cfg.CoinGecko)
	priceService := service.NewPriceService(upstream, priceStore, priceCache)

	// Create HTTP handler and server
	priceHandler := handler.NewPriceHandler(priceService)
	server := handler.CreateServer(priceHandler, cfg.Server.Port)

	structuredLogger.WithField("port", cfg.Server.Port).Info("Server starting")

	// Start server in a goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			structuredLogger.WithField("error", err.Error()).Fatal("Failed to start server")
		}
	}()

	structuredLogger.WithFields(map[string]interface{}{
		"port": cfg.Server.Port,
		"endpoints": map[string]string{
			"health":        "/health",
			"current_price": "/api/v1/current-price",
			"price_history": "/api/v1/price-history",
			"metrics":       "/metrics",
		},
		"cache_backend": cfg.Cache.Backend,
		"cache_ttl":     cfg.Cache.TTL.String(),
	}).Info("PriceFetch service is running")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.WithField("error", err.Error()).Fatal("Server forced to shutdown")
	}

	structuredLogger.Info("Server shutdown completed")
}
