// Package search implements the nearby brewery search: a location resolver backed by a
// geocoding provider, a geodistance filter, a text-matching fallback and a name ranker.
package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/hopmap/internal/geocoding"
	"github.com/UnknownOlympus/hopmap/internal/metrics"
	"github.com/UnknownOlympus/hopmap/internal/models"
)

// ErrEmptyLocation is returned when the search location is empty or whitespace only.
var ErrEmptyLocation = errors.New("location is required")

// Resolution is the outcome of resolving a free-text location. Point is meaningful only when OK is true.
type Resolution struct {
	Point models.Coordinates
	OK    bool
}

// Resolved wraps a successfully geocoded point.
func Resolved(point models.Coordinates) Resolution {
	return Resolution{Point: point, OK: true}
}

// Unresolved reports a failed geocode.
func Unresolved() Resolution {
	return Resolution{}
}

// Resolver turns a free-text location into coordinates through a geocoding provider.
type Resolver struct {
	provider     geocoding.Provider
	providerName string
	region       string
	log          *slog.Logger
	metrics      *metrics.Metrics
}

// NewResolver creates a resolver that scopes every query to region (for example "Ohio").
func NewResolver(
	provider geocoding.Provider,
	providerName string,
	region string,
	log *slog.Logger,
	metrics *metrics.Metrics,
) *Resolver {
	return &Resolver{
		provider:     provider,
		providerName: providerName,
		region:       strings.TrimSpace(region),
		log:          log,
		metrics:      metrics,
	}
}

// Resolve geocodes location with exactly one provider call. Only blank input is an error;
// provider errors, empty answers and out-of-range points all yield Unresolved.
func (r *Resolver) Resolve(ctx context.Context, location string) (Resolution, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Unresolved(), ErrEmptyLocation
	}

	query := r.Query(location)

	startTime := time.Now()
	coords, err := r.provider.Geocode(ctx, query)
	r.metrics.RequestSeconds.WithLabelValues(r.providerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		r.metrics.APIErrors.Inc()
		r.metrics.GeocodeResults.WithLabelValues("failed").Inc()
		r.log.WarnContext(ctx, "Location could not be geocoded", "query", query, "error", err)
		return Unresolved(), nil
	}

	if coords == nil || !coords.Valid() {
		r.metrics.GeocodeResults.WithLabelValues("failed").Inc()
		r.log.WarnContext(ctx, "Geocoder returned unusable coordinates", "query", query)
		return Unresolved(), nil
	}

	r.metrics.GeocodeResults.WithLabelValues("ok").Inc()
	r.log.DebugContext(ctx, "Location resolved", "query", query, "lat", coords.Latitude, "lng", coords.Longitude)

	return Resolved(*coords), nil
}

// Query builds the geocoding query for location: "<location>, <region>".
func (r *Resolver) Query(location string) string {
	if r.region == "" {
		return location
	}

	return location + ", " + r.region
}
