package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/markstash-cloud/markstash/internal/config"
	dbRedis "github.com/markstash-cloud/markstash/internal/db/redis"
	"github.com/markstash-cloud/markstash/internal/domain"
	logpkg "github.com/markstash-cloud/markstash/internal/logger"
	"github.com/markstash-cloud/markstash/internal/metrics"
	bookmarkrepo "github.com/markstash-cloud/markstash/internal/repository/bookmark"
	"github.com/markstash-cloud/markstash/internal/repository/rankcache"
	chiTransport "github.com/markstash-cloud/markstash/internal/transport/chi"
	openaiRank "github.com/markstash-cloud/markstash/internal/transport/openai"
	bookmarkuc "github.com/markstash-cloud/markstash/internal/usecase/bookmark"
	healthuc "github.com/markstash-cloud/markstash/internal/usecase/health"
	searchuc "github.com/markstash-cloud/markstash/internal/usecase/search"
	"github.com/markstash-cloud/markstash/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting markstash API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	domain.KeyPrefix = cfg.Storage.KeyPrefix

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Semantic ranker is optional: no API key, no semantic mode.
	var semanticRanker searchuc.SemanticRanker
	var semanticChecker healthuc.SemanticChecker
	if cfg.Semantic.APIKey != "" {
		ranker := openaiRank.NewRanker(&openaiRank.Config{
			APIKey:        cfg.Semantic.APIKey,
			BaseURL:       cfg.Semantic.BaseURL,
			Model:         cfg.Semantic.Model,
			Provider:      cfg.Semantic.Provider,
			RatePerMinute: cfg.Semantic.RatePerMinute,
			Logger:        logger,
		})
		logger.Info("Semantic ranker created",
			zap.String("provider", cfg.Semantic.Provider),
			zap.String("model", cfg.Semantic.Model),
			zap.Int("rate_per_minute", cfg.Semantic.RatePerMinute),
		)

		semanticRanker = ranker
		semanticChecker = ranker

		if cfg.Semantic.CacheTTLMin > 0 {
			semanticRanker = rankcache.New(
				ranker, store,
				time.Duration(cfg.Semantic.CacheTTLMin)*time.Minute,
				metrics.SemanticCacheTotal, logger,
			)
		}
	}

	repo := bookmarkrepo.New(store)

	bookmarkSvc := bookmarkuc.New(repo)
	searchSvc := searchuc.New(repo, semanticRanker).WithLogger(logger)
	healthSvc := healthuc.New(store, semanticChecker)

	server := chiTransport.NewServer(bookmarkSvc, searchSvc, healthSvc, logger).
		WithSearchLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit, cfg.Search.RelatedLimit)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
