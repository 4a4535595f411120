package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/retailapi/internal/config"
	"github.com/iudanet/retailapi/internal/server/cache"
	"github.com/iudanet/retailapi/internal/server/handlers"
	"github.com/iudanet/retailapi/internal/server/middleware"
	"github.com/iudanet/retailapi/internal/server/query"
	"github.com/iudanet/retailapi/internal/server/storage/postgres"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("Retail API server starting",
		slog.String("version", Version),
		slog.String("build_date", BuildDate),
		slog.String("git_commit", GitCommit),
		slog.String("addr", cfg.ListenAddr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Record Store
	store, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	defer store.Close()

	// Cache Layer: Redis, либо in-process кеш, если адрес не задан
	var queryCache cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to init cache: %w", err)
		}
		defer redisCache.Close()
		queryCache = redisCache
	} else {
		logger.Warn("no redis address configured, using in-process cache")
		memCache := cache.NewMemoryCache()
		defer memCache.Stop()
		queryCache = memCache
	}

	queries := query.NewService(logger, store, queryCache, cfg.CacheTTL)

	jwtConfig := handlers.JWTConfig{
		Secret:         []byte(cfg.SecretKey),
		AccessTokenTTL: cfg.AccessTokenTTL,
	}

	authHandler := handlers.NewAuthHandler(logger, store, jwtConfig)
	dataHandler := handlers.NewDataHandler(logger, queries)
	healthHandler := handlers.NewHealthHandler(logger, store)

	requireAuth := middleware.AuthMiddleware(logger, jwtConfig, store)
	authRate := middleware.RateLimitMiddleware(cfg.AuthRateLimit, cfg.AuthRateWindow, logger)

	mux := http.NewServeMux()
	mux.Handle("POST /signup", authRate(http.HandlerFunc(authHandler.Signup)))
	mux.Handle("POST /token", authRate(http.HandlerFunc(authHandler.Token)))
	mux.Handle("GET /data", requireAuth(http.HandlerFunc(dataHandler.GetData)))
	mux.Handle("GET /data/filter", requireAuth(http.HandlerFunc(dataHandler.FilterData)))
	mux.Handle("GET /data/{id}", requireAuth(http.HandlerFunc(dataHandler.GetDataByID)))
	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)

	handler := middleware.RecoveryMiddleware(logger)(
		middleware.LoggingWithSkip(logger, []string{"/api/v1/health"})(mux))

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	select {
	case err := <-errC:
		return fmt.Errorf("listen failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

// newLogger настраивает slog с уровнем из конфигурации
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
