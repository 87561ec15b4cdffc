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

	"github.com/kailas-cloud/vendorscout/internal/app"
	"github.com/kailas-cloud/vendorscout/internal/config"
	logpkg "github.com/kailas-cloud/vendorscout/internal/logger"
	"github.com/kailas-cloud/vendorscout/internal/metrics"
	vendorrepo "github.com/kailas-cloud/vendorscout/internal/repository/vendors"
	chiTransport "github.com/kailas-cloud/vendorscout/internal/transport/chi"
	cataloguc "github.com/kailas-cloud/vendorscout/internal/usecase/catalog"
	extractuc "github.com/kailas-cloud/vendorscout/internal/usecase/extract"
	healthuc "github.com/kailas-cloud/vendorscout/internal/usecase/health"
	rankeruc "github.com/kailas-cloud/vendorscout/internal/usecase/ranker"
	selectoruc "github.com/kailas-cloud/vendorscout/internal/usecase/selector"
	sourcinguc "github.com/kailas-cloud/vendorscout/internal/usecase/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/version"
)

func main() {
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

	ws, err := cfg.Weights()
	if err != nil {
		logger.Fatal("Invalid category weights", zap.Error(err))
	}

	logger.Info("Starting vendorscout API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Strings("categories", ws.Categories()),
	)

	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Vendor store not ready", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to vendor store")

	// Registered explicitly, no init().
	metrics.RegisterProviderMetrics()
	metrics.RegisterSourcingMetrics()

	provider := app.NewProvider(cfg.Understanding, logger)
	descriptions := app.NewDescriptionEmbedder(cfg.Understanding, provider, store, logger)

	repo := vendorrepo.New(store, vendorrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})

	catalogSvc := cataloguc.New(repo, descriptions, cfg.Understanding.Dimensions).
		WithMaxBatchSize(cfg.Index.MaxBatchSize)
	if err := catalogSvc.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure vendor index", zap.Error(err))
	}

	extractSvc := extractuc.New(provider, extractuc.Config{
		BudgetTolerance: cfg.Sourcing.BudgetTolerance,
		Timeout:         cfg.Timeouts.Extract(),
		CapacitySpaces:  cfg.CapacitySpaces(),
	})
	selectorSvc := selectoruc.New(repo, selectoruc.Config{
		DefaultLimit: cfg.Sourcing.CandidateLimit,
		Timeout:      cfg.Timeouts.Select(),
	})
	rankerSvc, err := rankeruc.New(repo, rankeruc.Config{
		Workers:   cfg.Sourcing.RankWorkers,
		ChunkSize: cfg.Sourcing.RankChunkSize,
		Timeout:   cfg.Timeouts.Rank(),
	})
	if err != nil {
		logger.Fatal("Failed to create ranker", zap.Error(err))
	}
	defer rankerSvc.Release()

	sourcingSvc := sourcinguc.New(extractSvc, selectorSvc, rankerSvc, ws, sourcinguc.Config{
		DefaultTopK:    cfg.Sourcing.DefaultTopK,
		MaxTopK:        cfg.Sourcing.MaxTopK,
		CandidateLimit: cfg.Sourcing.CandidateLimit,
	})
	healthSvc := healthuc.New(store, provider)

	server := chiTransport.NewServer(sourcingSvc, catalogSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware("/metrics"))
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

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
