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

	"github.com/kailas-cloud/stockdex/internal/config"
	"github.com/kailas-cloud/stockdex/internal/db/sqlite"
	logpkg "github.com/kailas-cloud/stockdex/internal/logger"
	"github.com/kailas-cloud/stockdex/internal/metrics"
	"github.com/kailas-cloud/stockdex/internal/repository/aliases"
	"github.com/kailas-cloud/stockdex/internal/repository/catalog"
	"github.com/kailas-cloud/stockdex/internal/repository/rescache"
	chiTransport "github.com/kailas-cloud/stockdex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/stockdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/stockdex/internal/usecase/search"
	"github.com/kailas-cloud/stockdex/internal/version"
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

	logger.Info("Starting stockdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("db_path", cfg.Database.Path),
		zap.String("aliases_path", cfg.Aliases.Path),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Catalog store: read-only, schema probed at open
	store, err := sqlite.NewStore(ctx, sqlite.Config{
		Driver:       cfg.Database.Driver,
		Path:         cfg.Database.Path,
		Schema:       catalogSchema(cfg.Database.Catalog),
		QueryTimeout: time.Duration(cfg.Database.QueryTimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to open catalog", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Catalog not ready", zap.Error(err))
	}
	logger.Info("Opened catalog", zap.String("table", store.Table()))

	// Brand aliases
	loader, err := aliases.Bootstrap(cfg.Aliases.Path, cfg.Aliases.IsRequired(), logger)
	if err != nil {
		logger.Fatal("Failed to load brand aliases", zap.Error(err))
	}
	if cfg.Aliases.Watch && cfg.Aliases.Path != "" {
		watcher := aliases.NewWatcher(loader, aliases.DefaultDebounce, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("Alias watcher stopped", zap.Error(err))
			}
		}()
	}

	// Search pipeline: composition root
	catalogRepo := catalog.New(store, store.Schema())
	searchSvc := searchuc.New(catalogRepo, loader.Registry(), searchConfig(cfg, store))

	var searcher chiTransport.Searcher = searchSvc
	kv, err := buildCacheStore(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to create result cache", zap.Error(err))
	}
	if kv != nil {
		defer kv.Close()
		searcher = rescache.New(searchSvc, kv, loader.Registry(), rescache.Options{
			TTL:    time.Duration(cfg.Cache.TTLSec) * time.Second,
			Prefix: cfg.Cache.Prefix + "result:",
		}, metrics.ResultCacheTotal, logger)
		logger.Info("Result cache enabled", zap.String("driver", cfg.Cache.Driver))
	}

	// Health service; pass nil interface (not a typed nil) when no cache is configured
	var cachePinger healthuc.DBPinger
	if kv != nil {
		cachePinger = kv
	}
	healthSvc := healthuc.New(store, loader.Registry(), cachePinger, cfg.Aliases.IsRequired())

	// Create chi server
	server := chiTransport.NewServer(searcher, searchSvc, loader, healthSvc, chiTransport.CatalogInfo{
		Path:  store.Path(),
		Table: store.Table(),
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
			Code:    chiTransport.ErrorCodeBadRequest,
			Message: "route not found",
		})
	})
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
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
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.String("search_candidates", ww.Header().Get("X-Search-Candidates")),
				zap.String("search_fallback", ww.Header().Get("X-Search-Fallback")),
				zap.String("search_cache", ww.Header().Get("X-Search-Cache")),
			)
		})
	}
}
