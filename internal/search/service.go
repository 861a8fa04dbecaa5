package search

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/UnknownOlympus/hopmap/internal/metrics"
	"github.com/UnknownOlympus/hopmap/internal/models"
)

// ErrInvalidRadius is returned for a negative, NaN or infinite search radius.
var ErrInvalidRadius = errors.New("radius must be a finite, non-negative number of miles")

// Mode names the filter a search used.
type Mode string

const (
	// ModeGeodistance filters by haversine distance from the geocoded location.
	ModeGeodistance Mode = "geodistance"
	// ModeTextFallback filters by city, address and ZIP prefix text matching.
	ModeTextFallback Mode = "text_fallback"
)

// CandidateSource supplies the full list of breweries a search runs over.
type CandidateSource interface {
	ListBreweries(ctx context.Context) ([]models.Brewery, error)
}

// LocationResolver converts a free-text location into a Resolution.
type LocationResolver interface {
	Resolve(ctx context.Context, location string) (Resolution, error)
}

// Outcome is a ranked result set together with the filter mode that produced it.
type Outcome struct {
	Mode    Mode
	Results []models.SearchResult
}

// Service runs nearby searches. It holds no per-search state and is safe for concurrent use.
type Service struct {
	resolver            LocationResolver
	log                 *slog.Logger
	metrics             *metrics.Metrics
	broadMatchThreshold int
	geocodeTimeout      time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithBroadMatchThreshold overrides DefaultBroadMatchThreshold. Zero disables the broad tier.
func WithBroadMatchThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold >= 0 {
			s.broadMatchThreshold = threshold
		}
	}
}

// WithGeocodeTimeout bounds each location resolution. A timed out geocode falls back to text matching.
func WithGeocodeTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.geocodeTimeout = timeout
	}
}

// NewService creates a search service.
func NewService(resolver LocationResolver, log *slog.Logger, metrics *metrics.Metrics, opts ...Option) *Service {
	svc := &Service{
		resolver:            resolver,
		log:                 log,
		metrics:             metrics,
		broadMatchThreshold: DefaultBroadMatchThreshold,
	}
	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

// Search returns the candidates near location, sorted by name.
func (s *Service) Search(
	ctx context.Context,
	location string,
	radiusMiles float64,
	candidates []models.Brewery,
) ([]models.SearchResult, error) {
	outcome, err := s.Nearby(ctx, location, radiusMiles, candidates)
	if err != nil {
		return nil, err
	}

	return outcome.Results, nil
}

// Nearby is Search that also reports which filter mode was used.
//
// The mode is chosen once: geodistance when the location geocodes, text fallback otherwise.
// Only invalid input is returned as an error; an empty result is a successful search.
func (s *Service) Nearby(
	ctx context.Context,
	location string,
	radiusMiles float64,
	candidates []models.Brewery,
) (Outcome, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Outcome{}, ErrEmptyLocation
	}
	if math.IsNaN(radiusMiles) || math.IsInf(radiusMiles, 0) || radiusMiles < 0 {
		return Outcome{}, ErrInvalidRadius
	}

	resolution, err := s.resolve(ctx, location)
	if err != nil {
		return Outcome{}, err
	}

	var outcome Outcome
	if resolution.OK {
		outcome = Outcome{Mode: ModeGeodistance, Results: WithinRadius(resolution.Point, radiusMiles, candidates)}
	} else {
		outcome = Outcome{Mode: ModeTextFallback, Results: MatchText(location, candidates, s.broadMatchThreshold)}
	}

	Rank(outcome.Results)

	s.metrics.Searches.WithLabelValues(string(outcome.Mode)).Inc()
	s.metrics.SearchResults.Observe(float64(len(outcome.Results)))
	s.log.InfoContext(ctx, "Nearby search finished",
		"location", location,
		"radius", radiusMiles,
		"mode", outcome.Mode,
		"candidates", len(candidates),
		"results", len(outcome.Results))

	return outcome, nil
}

func (s *Service) resolve(ctx context.Context, location string) (Resolution, error) {
	if s.geocodeTimeout <= 0 {
		return s.resolver.Resolve(ctx, location)
	}

	ctx, cancel := context.WithTimeout(ctx, s.geocodeTimeout)
	defer cancel()

	return s.resolver.Resolve(ctx, location)
}
