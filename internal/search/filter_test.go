package search_test

import (
	"math"
	"testing"

	"github.com/UnknownOlympus/hopmap/internal/geo"
	"github.com/UnknownOlympus/hopmap/internal/models"
	"github.com/UnknownOlympus/hopmap/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func brewery(id, name, city string, lat, lng float64) models.Brewery {
	return models.Brewery{ID: id, Name: name, City: city, Latitude: ptr(lat), Longitude: ptr(lng)}
}

func names(results []models.SearchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Name)
	}
	return out
}

func TestWithinRadius(t *testing.T) {
	origin := models.Coordinates{Latitude: 40, Longitude: -83}

	t.Run("radius boundary is inclusive", func(t *testing.T) {
		candidate := brewery("1", "North", "Delaware", 41, -83)
		distance := geo.DistanceMiles(origin, models.Coordinates{Latitude: 41, Longitude: -83})

		atRadius := search.WithinRadius(origin, distance, []models.Brewery{candidate})
		justInside := search.WithinRadius(origin, math.Nextafter(distance, 0), []models.Brewery{candidate})

		require.Len(t, atRadius, 1)
		assert.InDelta(t, distance, *atRadius[0].DistanceMiles, 1e-12)
		assert.Empty(t, justInside)
	})

	t.Run("invalid coordinates are skipped without error", func(t *testing.T) {
		candidates := []models.Brewery{
			brewery("1", "Polar", "Nowhere", 95, -83),
			{ID: "2", Name: "Half", Latitude: ptr(40)},
			{ID: "3", Name: "None"},
			brewery("4", "Here", "Columbus", 40, -83),
		}

		results := search.WithinRadius(origin, 20000, candidates)

		assert.Equal(t, []string{"Here"}, names(results))
		assert.Zero(t, *results[0].DistanceMiles)
	})

	t.Run("nothing nearby yields an empty, non-nil slice", func(t *testing.T) {
		results := search.WithinRadius(origin, 1, []models.Brewery{brewery("1", "Far", "Cleveland", 41.5, -81.69)})

		assert.NotNil(t, results)
		assert.Empty(t, results)
	})
}
