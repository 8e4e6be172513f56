package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/meteoaustral/goes-frames/internal/adapter/blobcache"
	"github.com/meteoaustral/goes-frames/internal/adapter/catalog"
	httpadapter "github.com/meteoaustral/goes-frames/internal/adapter/http"
	kafkaadapter "github.com/meteoaustral/goes-frames/internal/adapter/kafka"
	"github.com/meteoaustral/goes-frames/internal/config"
	"github.com/meteoaustral/goes-frames/internal/observability"
	"github.com/meteoaustral/goes-frames/internal/pipeline"
	"github.com/meteoaustral/goes-frames/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := catalog.NewClient(cfg.BucketBaseURL, cfg.Satellite, cfg.HTTPTimeout, metrics, logger)

	cache, err := blobcache.NewStore(cfg.CacheDir, client, cfg.Retry, metrics, logger)
	if err != nil {
		logger.Error("failed to open blob cache", "dir", cfg.CacheDir, "error", err)
		os.Exit(1)
	}

	discovery := pipeline.NewDiscovery(client, cfg.Channel, cfg.Window, cfg.Retry, logger)
	aggregator := pipeline.NewLightningAggregator(client, cache, nil,
		cfg.Region, cfg.MatchInterval, cfg.GridResolution, cfg.Retry, metrics, logger)
	assembler := pipeline.NewAssembler(discovery, aggregator, cache, nil, pipeline.AssemblerOptions{
		Region:  cfg.Region,
		Channel: cfg.Channel,
		Window:  cfg.Window,
		Workers: cfg.FetchConcurrency,
	}, metrics, logger)

	frames := store.NewFrames()

	// Announcements are feature-flagged via KAFKA_BROKERS / KAFKA_ENABLED.
	var announcer pipeline.Announcer
	var kafkaAnnouncer *kafkaadapter.Announcer
	if cfg.KafkaEnabled {
		kafkaAnnouncer = kafkaadapter.NewAnnouncer(cfg, logger)
		announcer = kafkaAnnouncer
		metrics.AnnounceEnabled.Set(1)
		logger.Info("kafka announcements enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka announcements disabled")
	}

	runner := pipeline.NewRunner(assembler, frames, announcer, cfg.RefreshInterval, metrics, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, frames, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the refresh schedule; the first window is assembled right away.
	if err := runner.Start(ctx); err != nil {
		logger.Error("failed to start runner", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	runner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaAnnouncer != nil {
		if err := kafkaAnnouncer.Close(); err != nil {
			logger.Error("kafka announcer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
