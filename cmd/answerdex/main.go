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

	"github.com/devmedia-cloud/answerdex/internal/config"
	"github.com/devmedia-cloud/answerdex/internal/db"
	dbRedis "github.com/devmedia-cloud/answerdex/internal/db/redis"
	"github.com/devmedia-cloud/answerdex/internal/domain"
	logpkg "github.com/devmedia-cloud/answerdex/internal/logger"
	"github.com/devmedia-cloud/answerdex/internal/metrics"
	"github.com/devmedia-cloud/answerdex/internal/repository/chunkmeta"
	"github.com/devmedia-cloud/answerdex/internal/repository/embcache"
	searchrepo "github.com/devmedia-cloud/answerdex/internal/repository/search"
	"github.com/devmedia-cloud/answerdex/internal/repository/synonym"
	chiTransport "github.com/devmedia-cloud/answerdex/internal/transport/chi"
	"github.com/devmedia-cloud/answerdex/internal/transport/entitlement"
	openaiTransport "github.com/devmedia-cloud/answerdex/internal/transport/openai"
	answeruc "github.com/devmedia-cloud/answerdex/internal/usecase/answer"
	assembleuc "github.com/devmedia-cloud/answerdex/internal/usecase/assemble"
	askuc "github.com/devmedia-cloud/answerdex/internal/usecase/ask"
	filtersuc "github.com/devmedia-cloud/answerdex/internal/usecase/filters"
	healthuc "github.com/devmedia-cloud/answerdex/internal/usecase/health"
	keywordsuc "github.com/devmedia-cloud/answerdex/internal/usecase/keywords"
	retrievaluc "github.com/devmedia-cloud/answerdex/internal/usecase/retrieval"
	"github.com/devmedia-cloud/answerdex/internal/version"
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

	logger.Info("Starting answerdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

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

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterGenerationMetrics()

	// Embedder set — one deployment per model class, both optional.
	embedders := make(map[domain.ModelClass]domain.Embedder)
	if cfg.Embedding.Small.Model != "" {
		embedders[domain.ModelClassSmall] = buildEmbedder(cfg.Embedding, cfg.Embedding.Small, store, logger)
	}
	if cfg.Embedding.Large.Model != "" {
		embedders[domain.ModelClassLarge] = buildEmbedder(cfg.Embedding, cfg.Embedding.Large, store, logger)
	}
	embedderSet := domain.NewEmbedderSet(embedders)

	// Generation is optional: without it keyword extraction degrades and
	// answer synthesis reports unavailable.
	var completer domain.Completer
	var genChecker healthuc.GenerationChecker
	if cfg.Generation.Model != "" {
		c, err := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
			APIKey:  cfg.Generation.APIKey,
			BaseURL: cfg.Generation.BaseURL,
			Model:   cfg.Generation.Model,
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal("Failed to create completer", zap.Error(err))
		}
		completer = c
		genChecker = c
	} else {
		logger.Warn("No generation model configured; answer synthesis disabled")
	}

	entitlements := entitlement.New(entitlement.Config{
		BaseURL:    cfg.Entitlement.BaseURL,
		TimeoutSec: cfg.Entitlement.TimeoutSec,
		Logger:     logger,
	})

	// Repositories
	synonyms := synonym.New(store)
	meta := chunkmeta.New(store)
	searches := searchrepo.New(store)

	// Usecases
	retrievalCfg := retrievaluc.Config{
		CandidateMultiplier: cfg.Retrieval.CandidateMultiplier,
		MaxCandidatePool:    cfg.Retrieval.MaxCandidatePool,
		LexicalScoreCutoff:  cfg.Retrieval.LexicalScoreCutoff,
		VectorScoreCutoff:   cfg.Retrieval.VectorScoreCutoff,
		AllowedPlatforms:    cfg.Retrieval.AllowedPlatforms,
		AttendeeFilter:      cfg.Retrieval.AttendeeFilter,
	}

	askSvc := askuc.New(
		keywordsuc.New(completer),
		filtersuc.New(synonyms),
		retrievaluc.NewVectorRetriever(searches, embedderSet, meta, retrievalCfg),
		retrievaluc.NewLexicalRetriever(searches, meta, retrievalCfg),
		assembleuc.New(meta, entitlements, assembleuc.Config{
			MaxChunks:         cfg.Context.MaxChunks,
			MaxPerDocLegacy:   cfg.Context.MaxPerDocLegacy,
			MaxPerDocStandard: cfg.Context.MaxPerDocStandard,
		}),
		answeruc.NewSynthesizer(completer),
		answeruc.NewResolver(completer, meta),
		completer,
		retrievalCfg,
	)

	healthSvc := healthuc.New(store, embeddingHealthChecker(embedders), genChecker)

	server := chiTransport.NewServer(
		askSvc, healthSvc, cfg.Retrieval.DefaultPageSize, cfg.Retrieval.MaxPageSize, logger,
	)

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

// buildEmbedder assembles the decorator chain: OpenAI -> Cached.
func buildEmbedder(
	embCfg config.EmbeddingConfig,
	depCfg config.DeploymentConfig,
	store db.Store,
	logger *zap.Logger,
) domain.Embedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     embCfg.APIKey,
		BaseURL:    embCfg.BaseURL,
		Model:      depCfg.Model,
		Dimensions: depCfg.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})

	if embCfg.CacheTTLSec <= 0 {
		return base
	}
	ttl := time.Duration(embCfg.CacheTTLSec) * time.Second
	return embcache.New(base, store, ttl, metrics.EmbeddingCacheTotal, logger)
}

// embeddingHealthChecker probes the first embedder that supports health checks.
func embeddingHealthChecker(embedders map[domain.ModelClass]domain.Embedder) healthuc.EmbeddingChecker {
	for _, e := range embedders {
		if hc, ok := e.(domain.HealthChecker); ok {
			return hc
		}
	}
	return nil
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

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

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
