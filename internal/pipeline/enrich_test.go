package pipeline_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/geoclient"
	"github.com/couchcryptid/geoclient/internal/domain"
	"github.com/couchcryptid/geoclient/internal/pipeline"
)

type stubGeocoder struct {
	forwardCalls int
	reverseCalls int
	results      []geoclient.Location
	err          error
}

func (s *stubGeocoder) Geocode(_ context.Context, _ string, _ *geoclient.Options) ([]geoclient.Location, error) {
	s.forwardCalls++
	return s.results, s.err
}

func (s *stubGeocoder) Reverse(_ context.Context, _ any, _ *geoclient.Options) ([]geoclient.Location, error) {
	s.reverseCalls++
	return s.results, s.err
}

var frozen = time.Date(2026, time.August, 27, 15, 10, 0, 0, time.UTC)

func newEnricher(stub *stubGeocoder) *pipeline.Enricher {
	return pipeline.NewEnricher(stub, "yandex", slog.Default(), newTestMetrics(), clockwork.NewFakeClockAt(frozen))
}

func TestEnricher_Forward(t *testing.T) {
	stub := &stubGeocoder{results: []geoclient.Location{{
		Label: "435 N Michigan Ave, Chicago, IL 60611, USA",
		Point: geoclient.Point{Lat: 41.8902, Lon: -87.6242},
	}}}
	e := newEnricher(stub)

	out, err := e.Transform(context.Background(), domain.RawEvent{
		Value: []byte(`{"id":"evt-1","address":"435 north michigan ave, chicago il 60611 usa"}`),
	})
	require.NoError(t, err)

	want := domain.EnrichedEvent{
		ID:          "evt-1",
		Query:       "435 north michigan ave, chicago il 60611 usa",
		Direction:   domain.DirectionForward,
		Label:       "435 N Michigan Ave, Chicago, IL 60611, USA",
		Lat:         41.8902,
		Lon:         -87.6242,
		Provider:    "yandex",
		ProcessedAt: frozen,
	}
	assert.Empty(t, cmp.Diff(want, out))
	assert.Equal(t, 1, stub.forwardCalls)
	assert.Zero(t, stub.reverseCalls)
}

func TestEnricher_ReverseWinsWhenBothPresent(t *testing.T) {
	stub := &stubGeocoder{results: []geoclient.Location{{
		Label: "West 35th Street, New York",
		Point: geoclient.Point{Lat: 40.7538, Lon: -73.9849},
	}}}
	e := newEnricher(stub)

	out, err := e.Transform(context.Background(), domain.RawEvent{
		Value: []byte(`{"id":"evt-2","address":"ignored","lat":40.7538,"lon":-73.9849}`),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DirectionReverse, out.Direction)
	assert.Equal(t, "40.7538,-73.9849", out.Query)
	assert.Equal(t, 1, stub.reverseCalls)
	assert.Zero(t, stub.forwardCalls)
}

func TestEnricher_NotFoundIsNotAnError(t *testing.T) {
	e := newEnricher(&stubGeocoder{})

	out, err := e.Transform(context.Background(), domain.RawEvent{
		Value: []byte(`{"id":"evt-3","address":"nowhere in particular"}`),
	})
	require.NoError(t, err)
	assert.True(t, out.NotFound)
	assert.Empty(t, out.Label)
}

func TestEnricher_ProviderErrorPropagates(t *testing.T) {
	stub := &stubGeocoder{err: &geoclient.Error{Kind: geoclient.KindQuota, Provider: "yandex", Token: "429"}}
	e := newEnricher(stub)

	_, err := e.Transform(context.Background(), domain.RawEvent{
		Value: []byte(`{"id":"evt-4","address":"somewhere"}`),
	})
	require.Error(t, err)
	assert.True(t, geoclient.IsQuota(err), "classified kind survives wrapping")
}

func TestEnricher_BadPayload(t *testing.T) {
	e := newEnricher(&stubGeocoder{})

	for name, payload := range map[string]string{
		"invalid json": `{`,
		"missing id":   `{"address":"x"}`,
		"empty lookup": `{"id":"evt-5"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := e.Transform(context.Background(), domain.RawEvent{Value: []byte(payload)})
			assert.Error(t, err)
		})
	}
}
