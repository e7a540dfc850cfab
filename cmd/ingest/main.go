package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/GNSkier/MoonRabbit/internal/adapter/http"
	kafkaadapter "github.com/GNSkier/MoonRabbit/internal/adapter/kafka"
	"github.com/GNSkier/MoonRabbit/internal/adapter/nws"
	"github.com/GNSkier/MoonRabbit/internal/config"
	"github.com/GNSkier/MoonRabbit/internal/domain"
	"github.com/GNSkier/MoonRabbit/internal/gazetteer"
	"github.com/GNSkier/MoonRabbit/internal/observability"
	"github.com/GNSkier/MoonRabbit/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// Local development convenience; absent .env files are fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	extractor := gazetteer.NewExtractor(logger)
	index, err := extractor.Extract(cfg.GazetteerPath, cfg.SupplementPath, domain.NewAllowList(cfg.AllowedStates))
	if err != nil {
		logger.Error("failed to build region index", "error", err)
		os.Exit(1)
	}
	metrics.RegionsIndexed.Set(float64(len(index.Regions())))
	metrics.CoordinatesIndexed.Set(float64(index.Len()))

	client := nws.NewClient(cfg, metrics, logger)
	resolver := nws.NewCachedResolver(client, cfg.StationCacheSize, metrics)

	writer := kafkaadapter.NewWriter(cfg, logger)

	p := pipeline.New(index, resolver, client, writer, logger, metrics, cfg.FetchPacing, cfg.PollInterval)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, index, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingest pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
