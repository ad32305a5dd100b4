package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/geoclient"
	"github.com/couchcryptid/geoclient/internal/domain"
	"github.com/couchcryptid/geoclient/internal/observability"
)

// Enricher resolves lookup requests through a geocoding provider. It
// implements Transformer.
type Enricher struct {
	geocoder geoclient.Geocoder
	provider string
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
}

// NewEnricher creates an Enricher. A nil clock uses real time; tests pass
// a fake for deterministic processed_at stamps.
func NewEnricher(geocoder geoclient.Geocoder, provider string, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Enricher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Enricher{
		geocoder: geocoder,
		provider: provider,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
	}
}

// Transform parses a raw source message and resolves it through the
// provider. Zero-result lookups produce an event with NotFound set;
// classified provider failures are returned as errors so the pipeline
// skips the message.
func (e *Enricher) Transform(ctx context.Context, raw domain.RawEvent) (domain.EnrichedEvent, error) {
	var req domain.LookupRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return domain.EnrichedEvent{}, fmt.Errorf("decode lookup request: %w", err)
	}
	if req.ID == "" {
		return domain.EnrichedEvent{}, fmt.Errorf("lookup request without id")
	}

	switch {
	case req.HasCoordinates():
		return e.reverse(ctx, req)
	case req.Address != "":
		return e.forward(ctx, req)
	default:
		return domain.EnrichedEvent{}, fmt.Errorf("lookup request %s has neither address nor coordinates", req.ID)
	}
}

func (e *Enricher) forward(ctx context.Context, req domain.LookupRequest) (domain.EnrichedEvent, error) {
	locs, err := e.lookup(ctx, domain.DirectionForward, func(ctx context.Context) ([]geoclient.Location, error) {
		return e.geocoder.Geocode(ctx, req.Address, nil)
	})
	if err != nil {
		return domain.EnrichedEvent{}, fmt.Errorf("forward geocode %q: %w", req.Address, err)
	}
	return e.event(req, req.Address, domain.DirectionForward, locs), nil
}

func (e *Enricher) reverse(ctx context.Context, req domain.LookupRequest) (domain.EnrichedEvent, error) {
	point := geoclient.Point{Lat: req.Lat, Lon: req.Lon}
	locs, err := e.lookup(ctx, domain.DirectionReverse, func(ctx context.Context) ([]geoclient.Location, error) {
		return e.geocoder.Reverse(ctx, point, nil)
	})
	if err != nil {
		return domain.EnrichedEvent{}, fmt.Errorf("reverse geocode %s: %w", point, err)
	}
	return e.event(req, point.String(), domain.DirectionReverse, locs), nil
}

func (e *Enricher) lookup(ctx context.Context, direction string, call func(context.Context) ([]geoclient.Location, error)) ([]geoclient.Location, error) {
	start := time.Now()
	locs, err := call(ctx)
	e.metrics.GeocodeDuration.WithLabelValues(direction).Observe(time.Since(start).Seconds())

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case len(locs) == 0:
		outcome = "empty"
	}
	e.metrics.GeocodeRequests.WithLabelValues(direction, outcome).Inc()
	return locs, err
}

func (e *Enricher) event(req domain.LookupRequest, query, direction string, locs []geoclient.Location) domain.EnrichedEvent {
	out := domain.EnrichedEvent{
		ID:          req.ID,
		Query:       query,
		Direction:   direction,
		Provider:    e.provider,
		ProcessedAt: e.clock.Now().UTC(),
	}
	if len(locs) == 0 {
		out.NotFound = true
		return out
	}
	out.Label = locs[0].Label
	out.Lat = locs[0].Point.Lat
	out.Lon = locs[0].Point.Lon
	return out
}
