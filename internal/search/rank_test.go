package search_test

import (
	"testing"

	"github.com/UnknownOlympus/hopmap/internal/models"
	"github.com/UnknownOlympus/hopmap/internal/search"
	"github.com/stretchr/testify/assert"
)

func result(id, name string, distance float64) models.SearchResult {
	return models.SearchResult{Brewery: models.Brewery{ID: id, Name: name}, DistanceMiles: &distance}
}

func TestRank(t *testing.T) {
	t.Run("sorts by collated name, not by bytes", func(t *testing.T) {
		results := []models.SearchResult{
			result("1", "Zephyr Ales", 1),
			result("2", "alpha Brewing", 2),
			result("3", "Éclair Cellars", 3),
			result("4", "Brew Kettle", 4),
			result("5", "Fox Tail", 5),
		}

		search.Rank(results)

		assert.Equal(t, []string{"alpha Brewing", "Brew Kettle", "Éclair Cellars", "Fox Tail", "Zephyr Ales"}, names(results))
	})

	t.Run("ignores distance", func(t *testing.T) {
		results := []models.SearchResult{result("1", "Beta", 0.5), result("2", "Alpha", 40)}

		search.Rank(results)

		assert.Equal(t, []string{"Alpha", "Beta"}, names(results))
	})

	t.Run("empty names first and ties keep input order", func(t *testing.T) {
		results := []models.SearchResult{
			result("a", "Same", 0),
			result("b", "", 0),
			result("c", "Same", 0),
			result("d", "", 0),
		}

		search.Rank(results)

		ids := make([]string, 0, len(results))
		for _, r := range results {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.NotPanics(t, func() { search.Rank(nil) })
	})
}
