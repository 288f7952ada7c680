package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pfdash/internal/amqp"
	"pfdash/internal/cache"
	"pfdash/internal/calc"
	"pfdash/internal/config"
	apphttp "pfdash/internal/http"
	"pfdash/internal/services"
	"pfdash/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	// AMQP is best effort: without it snapshots are still stored locally
	// and the worker backfills them from the pending queue.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, snapshots will sync via worker backfill", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	}

	var metricsCache cache.Cache[calc.MetricsResult]
	switch cfg.CacheBackend {
	case "redis":
		redisCache := cache.NewRedis[calc.MetricsResult](cfg.RedisAddr, "pfdash:metrics", cfg.MetricsCacheTTL)
		defer redisCache.Close()
		metricsCache = redisCache
		logger.Info("Initialized redis metrics cache", "addr", cfg.RedisAddr)
	default:
		metricsCache = cache.NewLRU[calc.MetricsResult](cfg.MetricsCacheMax, cfg.MetricsCacheTTL)
		logger.Info("Initialized in-memory metrics cache",
			"max_entries", cfg.MetricsCacheMax,
			"ttl", cfg.MetricsCacheTTL)
	}

	metricsService := services.NewMetricsService(metricsCache)
	snapshotService := services.NewSnapshotService(sqliteRepo, amqpClient)

	srv := apphttp.NewServer(":"+cfg.Port, metricsService, snapshotService, cfg.RateLimitPerMinute)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting pfdash server", "port", cfg.Port, "cache_backend", cfg.CacheBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
