package geo_test

import (
	"testing"

	"github.com/UnknownOlympus/hopmap/internal/geo"
	"github.com/UnknownOlympus/hopmap/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDistanceMiles(t *testing.T) {
	t.Run("identical points", func(t *testing.T) {
		point := models.Coordinates{Latitude: 39.9612, Longitude: -82.9988}

		assert.Zero(t, geo.DistanceMiles(point, point))
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		from := models.Coordinates{Latitude: 40, Longitude: -83}
		to := models.Coordinates{Latitude: 41, Longitude: -83}

		assert.InEpsilon(t, 69.0, geo.DistanceMiles(from, to), 0.01)
	})

	t.Run("symmetric", func(t *testing.T) {
		columbus := models.Coordinates{Latitude: 39.9612, Longitude: -82.9988}
		cleveland := models.Coordinates{Latitude: 41.50, Longitude: -81.69}

		assert.InDelta(t, geo.DistanceMiles(columbus, cleveland), geo.DistanceMiles(cleveland, columbus), 1e-9)
	})

	t.Run("columbus to cleveland", func(t *testing.T) {
		columbus := models.Coordinates{Latitude: 39.9612, Longitude: -82.9988}
		cleveland := models.Coordinates{Latitude: 41.50, Longitude: -81.69}

		distance := geo.DistanceMiles(columbus, cleveland)

		assert.Greater(t, distance, 100.0)
		assert.Less(t, distance, 140.0)
	})
}
