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

	httpadapter "github.com/couchcryptid/groundwater-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/groundwater-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/groundwater-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/groundwater-dashboard/internal/adapter/staticdata"
	"github.com/couchcryptid/groundwater-dashboard/internal/config"
	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
	"github.com/couchcryptid/groundwater-dashboard/internal/mockdata"
	"github.com/couchcryptid/groundwater-dashboard/internal/observability"
	"github.com/couchcryptid/groundwater-dashboard/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	source, err := newDatasetLoader(cfg, metrics, logger)
	if err != nil {
		logger.Error("failed to configure data source", "error", err)
		os.Exit(1)
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var enricher *pipeline.StationEnricher
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		enricher = pipeline.NewEnricher(geocoder, logger)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Recharge-event publishing is optional; a nil sink skips it.
	var (
		writer *kafkaadapter.Writer
		sink   pipeline.BatchLoader
	)
	if cfg.PublishEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sink = writer
		logger.Info("recharge publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaRechargeTopic)
	}

	seasonal, err := domain.NewSeasonalAggregator(cfg.SeasonalMode)
	if err != nil {
		logger.Error("invalid seasonal mode", "error", err)
		os.Exit(1)
	}

	p := pipeline.New(source, enricher, sink, logger, metrics, pipeline.Options{
		SourceName: string(cfg.DataSource),
		BatchSize:  cfg.BatchSize,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, seasonal, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load the dataset and publish recharge events.
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
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// newDatasetLoader builds the configured station source. Remote and
// directory sources are fronted by a document cache.
func newDatasetLoader(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (pipeline.DatasetLoader, error) {
	switch cfg.DataSource {
	case config.SourceMock:
		logger.Info("using generated dataset", "seed", cfg.MockSeed, "stations", cfg.MockStations)
		return mockdata.NewLoader(cfg.MockSeed, cfg.MockStations, clockwork.NewRealClock()), nil
	case config.SourceHTTP:
		logger.Info("using remote dataset", "base_url", cfg.DataBaseURL)
		src := staticdata.NewHTTPSource(cfg.DataBaseURL, cfg.DataFetchTimeout, logger)
		return staticdata.NewLoader(staticdata.NewCachedSource(src, cfg.DataCacheSize, metrics)), nil
	case config.SourceDir:
		logger.Info("using dataset directory", "dir", cfg.DataDir)
		src := staticdata.NewDirSource(cfg.DataDir)
		return staticdata.NewLoader(staticdata.NewCachedSource(src, cfg.DataCacheSize, metrics)), nil
	default:
		return nil, fmt.Errorf("unsupported data source %q", cfg.DataSource)
	}
}
