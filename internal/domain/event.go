// Package domain models the messages flowing through the batch geocoding
// enrichment worker: lookup requests read from the source topic and the
// resolved locations written to the sink topic.
package domain

import (
	"context"
	"time"
)

// LookupRequest is the flat JSON payload published to the source topic.
// Either Address (forward) or Lat/Lon (reverse) must be present; when both
// are, the coordinates win because they are the stronger signal.
type LookupRequest struct {
	ID      string  `json:"id"`
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

// HasCoordinates reports whether the request carries a reverse-geocodable
// coordinate. (0, 0) is treated as absent; it is open ocean, not a
// plausible lookup subject.
func (r LookupRequest) HasCoordinates() bool {
	return r.Lat != 0 || r.Lon != 0
}

// RawEvent is an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Direction labels which lookup the enricher performed.
const (
	DirectionForward = "forward"
	DirectionReverse = "reverse"
)

// EnrichedEvent is the resolved location written to the sink topic.
// NotFound marks lookups the provider answered with zero results, which is
// a valid outcome, not a failure.
type EnrichedEvent struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	Direction   string    `json:"direction"`
	Label       string    `json:"label,omitempty"`
	Lat         float64   `json:"lat,omitempty"`
	Lon         float64   `json:"lon,omitempty"`
	NotFound    bool      `json:"not_found,omitempty"`
	Provider    string    `json:"provider"`
	ProcessedAt time.Time `json:"processed_at"`
}
