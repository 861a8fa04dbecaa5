package search

import (
	"slices"

	"github.com/UnknownOlympus/hopmap/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Rank sorts results in place by name using English collation. Empty names come first and
// results with equal names keep their input order. Distance is never considered.
func Rank(results []models.SearchResult) {
	// collate.Collator is not safe for concurrent use.
	collator := collate.New(language.English)

	slices.SortStableFunc(results, func(a, b models.SearchResult) int {
		switch {
		case a.Name == "" && b.Name == "":
			return 0
		case a.Name == "":
			return -1
		case b.Name == "":
			return 1
		}

		return collator.CompareString(a.Name, b.Name)
	})
}
