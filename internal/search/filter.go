package search

import (
	"github.com/UnknownOlympus/hopmap/internal/geo"
	"github.com/UnknownOlympus/hopmap/internal/models"
)

// WithinRadius returns the candidates whose haversine distance from origin is at most radiusMiles,
// annotated with that distance. Candidates without valid coordinates are skipped.
func WithinRadius(origin models.Coordinates, radiusMiles float64, candidates []models.Brewery) []models.SearchResult {
	results := make([]models.SearchResult, 0, len(candidates))

	for _, candidate := range candidates {
		coords, ok := candidate.Coordinates()
		if !ok {
			continue
		}

		distance := geo.DistanceMiles(origin, coords)
		if distance <= radiusMiles {
			d := distance
			results = append(results, models.SearchResult{Brewery: candidate, DistanceMiles: &d})
		}
	}

	return results
}
