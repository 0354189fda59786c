package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cinematch/internal/config"
	dbRedis "github.com/kailas-cloud/cinematch/internal/db/redis"
	domcat "github.com/kailas-cloud/cinematch/internal/domain/catalog"
	logpkg "github.com/kailas-cloud/cinematch/internal/logger"
	"github.com/kailas-cloud/cinematch/internal/metrics"
	catalogrepo "github.com/kailas-cloud/cinematch/internal/repository/catalog"
	chiTransport "github.com/kailas-cloud/cinematch/internal/transport/chi"
	"github.com/kailas-cloud/cinematch/internal/transport/omdb"
	healthuc "github.com/kailas-cloud/cinematch/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/cinematch/internal/usecase/recommend"
	"github.com/kailas-cloud/cinematch/internal/version"
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

	logger.Info("Starting cinematch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_source", cfg.Catalog.Source),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterMetadataMetrics()

	ctx := context.Background()
	catalog, err := loadCatalog(ctx, cfg.Catalog)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	logger.Info("Catalog loaded", zap.Int("movies", catalog.Len()))

	// Shared client: connections are reused across fetches.
	httpClient := &http.Client{Transport: &http.Transport{
		MaxIdleConnsPerHost: cfg.Recommend.FetchConcurrency,
		IdleConnTimeout:     90 * time.Second,
	}}

	metadata := omdb.NewClient(&omdb.Config{
		APIKey:            cfg.OMDb.APIKey,
		BaseURL:           cfg.OMDb.BaseURL,
		Timeout:           time.Duration(cfg.OMDb.TimeoutSec) * time.Second,
		PlaceholderPoster: cfg.OMDb.PlaceholderPoster,
		RatePerSec:        cfg.OMDb.RatePerSec,
		Burst:             cfg.OMDb.Burst,
		BreakerFailures:   cfg.OMDb.Breaker.ConsecutiveFailures,
		BreakerTimeout:    time.Duration(cfg.OMDb.Breaker.OpenSec) * time.Second,
		HTTPClient:        httpClient,
		Logger:            logger,
	})

	recommendSvc := recommenduc.New(catalog, metadata).
		WithCount(cfg.Recommend.Count).
		WithFetchConcurrency(cfg.Recommend.FetchConcurrency).
		WithMaxSimilar(cfg.Recommend.MaxSimilar).
		WithExcludeMode(recommenduc.ExcludeMode(cfg.Recommend.ExcludeSelf))

	healthSvc := healthuc.New(catalog, metadata)

	server := chiTransport.NewServer(recommendSvc, healthSvc, logger).
		WithRecommendRateLimit(cfg.HTTP.RateLimit.Requests, time.Duration(cfg.HTTP.RateLimit.WindowSec)*time.Second)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.CORS(cfg.HTTP.CORSOrigins))
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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// loadCatalog reads the similarity artifact from the configured source.
// The Redis connection is only held for the duration of the load.
func loadCatalog(ctx context.Context, cfg config.CatalogConfig) (*domcat.Catalog, error) {
	switch cfg.Source {
	case config.CatalogSourceFile:
		return catalogrepo.LoadFile(cfg.Path)
	case config.CatalogSourceRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Redis.Addrs,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		return catalogrepo.LoadRedis(ctx, store, cfg.Redis.Key)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}
