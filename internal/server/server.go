// Package server exposes the nearby search over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/hopmap/internal/models"
	"github.com/UnknownOlympus/hopmap/internal/search"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Searcher runs a nearby search over a candidate list.
type Searcher interface {
	Nearby(ctx context.Context, location string, radiusMiles float64, candidates []models.Brewery) (search.Outcome, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires the search service and candidate source to HTTP routes.
type Server struct {
	log           *slog.Logger
	searcher      Searcher
	source        search.CandidateSource
	gatherer      prometheus.Gatherer
	pinger        Pinger
	defaultRadius float64
	router        *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithDefaultRadius sets the radius used when a request omits it.
func WithDefaultRadius(miles float64) Option {
	return func(s *Server) {
		s.defaultRadius = miles
	}
}

// WithPinger makes /healthz check the given store.
func WithPinger(p Pinger) Option {
	return func(s *Server) {
		s.pinger = p
	}
}

// New builds the router. Metrics from gatherer are served on /metrics.
func New(
	log *slog.Logger,
	searcher Searcher,
	source search.CandidateSource,
	gatherer prometheus.Gatherer,
	opts ...Option,
) *Server {
	srv := &Server{
		log:           log,
		searcher:      searcher,
		source:        source,
		gatherer:      gatherer,
		defaultRadius: 25,
	}
	for _, opt := range opts {
		opt(srv)
	}

	router := mux.NewRouter()
	router.Use(srv.requestID, srv.accessLog)

	router.HandleFunc("/api/breweries/nearby", srv.nearby).Methods(http.MethodGet)
	router.HandleFunc("/api/breweries", srv.breweries).Methods(http.MethodGet)

	router.HandleFunc("/healthz", srv.healthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	srv.router = router

	return srv
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting HTTP server", "port", port)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	s.log.InfoContext(ctx, "Shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	return nil
}

type nearbyResponse struct {
	Success   bool                  `json:"success"`
	Location  string                `json:"location"`
	Radius    float64               `json:"radius"`
	Mode      search.Mode           `json:"mode"`
	Count     int                   `json:"count"`
	Breweries []models.SearchResult `json:"breweries"`
}

type breweriesResponse struct {
	Success   bool             `json:"success"`
	Count     int              `json:"count"`
	Breweries []models.Brewery `json:"breweries"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) nearby(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	location := strings.TrimSpace(query.Get("location"))

	radius := s.defaultRadius
	if raw := strings.TrimSpace(query.Get("radius")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			renderJSON(w, http.StatusBadRequest, errorResponse{Error: "radius must be a number"})
			return
		}
		radius = parsed
	}

	if location == "" {
		renderJSON(w, http.StatusBadRequest, errorResponse{Error: search.ErrEmptyLocation.Error()})
		return
	}

	candidates, err := s.source.ListBreweries(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load breweries", "error", err)
		renderJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load breweries"})
		return
	}

	outcome, err := s.searcher.Nearby(ctx, location, radius, candidates)
	switch {
	case errors.Is(err, search.ErrEmptyLocation), errors.Is(err, search.ErrInvalidRadius):
		renderJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		s.log.ErrorContext(ctx, "Nearby search failed", "location", location, "error", err)
		renderJSON(w, http.StatusInternalServerError, errorResponse{Error: "search failed"})
		return
	}

	renderJSON(w, http.StatusOK, nearbyResponse{
		Success:   true,
		Location:  location,
		Radius:    radius,
		Mode:      outcome.Mode,
		Count:     len(outcome.Results),
		Breweries: outcome.Results,
	})
}

func (s *Server) breweries(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.source.ListBreweries(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to load breweries", "error", err)
		renderJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load breweries"})
		return
	}
	if candidates == nil {
		candidates = []models.Brewery{}
	}

	renderJSON(w, http.StatusOK, breweriesResponse{Success: true, Count: len(candidates), Breweries: candidates})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	status, body := http.StatusOK, "OK"
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			s.log.WarnContext(r.Context(), "Health check failed", "error", err)
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
	}

	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		s.log.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}

func renderJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}
