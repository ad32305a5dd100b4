// Package http exposes the worker's operational endpoints plus a small
// synchronous lookup API for debugging provider behavior.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/geoclient"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes health, readiness, metrics, and lookup HTTP endpoints.
type Server struct {
	httpServer *http.Server
	geocoder   geoclient.Geocoder
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /v1/{geocode,reverse} routes. The lookup routes serve through the same
// decorated geocoder the pipeline uses, so cache and rate limits are
// shared.
func NewServer(addr string, ready ReadinessChecker, geocoder geoclient.Geocoder, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		geocoder: geocoder,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/geocode", s.handleGeocode)
	mux.HandleFunc("GET /v1/reverse", s.handleReverse)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing q parameter"})
		return
	}
	locs, err := s.geocoder.Geocode(r.Context(), query, lookupOptions(r))
	s.writeLookup(w, locs, err)
}

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request) {
	at := r.URL.Query().Get("at")
	if at == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing at parameter"})
		return
	}
	locs, err := s.geocoder.Reverse(r.Context(), at, lookupOptions(r))
	s.writeLookup(w, locs, err)
}

func lookupOptions(r *http.Request) *geoclient.Options {
	opts := &geoclient.Options{
		ExactlyOne: r.URL.Query().Get("all") != "true",
		Language:   r.URL.Query().Get("lang"),
	}
	return opts
}

func (s *Server) writeLookup(w http.ResponseWriter, locs []geoclient.Location, err error) {
	if err != nil {
		status := statusForError(err)
		s.logger.Warn("lookup failed", "error", err, "status", status)
		writeJSON(w, status, map[string]string{
			"error": err.Error(),
			"kind":  geoclient.KindOf(err).String(),
		})
		return
	}
	results := make([]map[string]any, 0, len(locs))
	for _, loc := range locs {
		results = append(results, map[string]any{
			"label": loc.Label,
			"lat":   loc.Point.Lat,
			"lon":   loc.Point.Lon,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// statusForError maps classified lookup failures to HTTP statuses. Caller
// mistakes are 400s; everything the upstream provider caused is a gateway
// error.
func statusForError(err error) int {
	var gerr *geoclient.Error
	if !errors.As(err, &gerr) {
		return http.StatusInternalServerError
	}
	switch gerr.Kind {
	case geoclient.KindQuery:
		return http.StatusBadRequest
	case geoclient.KindQuota:
		return http.StatusTooManyRequests
	case geoclient.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
