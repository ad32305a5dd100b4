// Command enrich runs the Kafka geocoding enrichment worker: it consumes
// lookup requests from the source topic, resolves them through the
// configured provider, and publishes enriched locations to the sink topic.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/geoclient"
	httpadapter "github.com/couchcryptid/geoclient/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/geoclient/internal/adapter/kafka"
	"github.com/couchcryptid/geoclient/internal/config"
	"github.com/couchcryptid/geoclient/internal/observability"
	"github.com/couchcryptid/geoclient/internal/pipeline"

	_ "github.com/couchcryptid/geoclient/provider/geocodeearth"
	_ "github.com/couchcryptid/geoclient/provider/googlev3"
	_ "github.com/couchcryptid/geoclient/provider/pelias"
	_ "github.com/couchcryptid/geoclient/provider/yandex"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	geocoder, err := buildGeocoder(cfg, logger)
	if err != nil {
		logger.Error("failed to build geocoder", "provider", cfg.Provider, "error", err)
		os.Exit(1)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	enricher := pipeline.NewEnricher(geocoder, cfg.Provider, logger, metrics, nil)

	p := pipeline.New(reader, enricher, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, geocoder, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start enrichment pipeline.
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
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// buildGeocoder constructs the configured provider and wraps it with the
// caching and rate-limiting decorators.
func buildGeocoder(cfg *config.Config, logger *slog.Logger) (geoclient.Geocoder, error) {
	inner, err := geoclient.New(cfg.Provider, geoclient.Settings{
		APIKey:   cfg.APIKey,
		ClientID: cfg.ClientID,
		Secret:   cfg.Secret,
		Domain:   cfg.Domain,
		Language: cfg.Language,
		Config: geoclient.Config{
			Timeout: cfg.GeocodeTimeout,
			Logger:  logger,
		},
	})
	if err != nil {
		return nil, err
	}

	geocoder := geoclient.Cached(inner, cfg.GeocodeCacheSize)
	logger.Info("geocoder ready",
		"provider", cfg.Provider,
		"cache_size", cfg.GeocodeCacheSize,
		"timeout", cfg.GeocodeTimeout,
	)

	if cfg.GeocodeRPS > 0 {
		geocoder = geoclient.RateLimited(geocoder, cfg.GeocodeRPS)
		logger.Info("client-side pacing enabled", "rps", cfg.GeocodeRPS)
	}
	return geocoder, nil
}
