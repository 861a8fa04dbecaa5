package search

import (
	"regexp"
	"strings"

	"github.com/UnknownOlympus/hopmap/internal/models"
)

// DefaultBroadMatchThreshold is the exact-match count below which the broad tier replaces it.
// The value comes from the existing site behaviour and has not been tuned against real data.
const DefaultBroadMatchThreshold = 5

var (
	zipCodePattern  = regexp.MustCompile(`^\d{5}$`)
	zipTokenPattern = regexp.MustCompile(`\b\d{5}\b`)
)

// zipPrefixLength is how many leading digits two ZIP codes share to count as the same area.
const zipPrefixLength = 3

// MatchText is the fallback used when the location could not be geocoded.
//
// The exact tier matches a case-insensitive city name or a literal address substring. When it
// finds fewer than threshold breweries, the broad tier runs instead and its result is returned
// on its own: case-insensitive city substring, literal address substring, or for a five digit
// location any ZIP code in the address with the same three digit prefix.
func MatchText(location string, candidates []models.Brewery, threshold int) []models.SearchResult {
	exact := filterBreweries(candidates, func(b models.Brewery) bool {
		return exactMatch(location, b)
	})
	if len(exact) >= threshold {
		return exact
	}

	zipPrefix := ""
	if zipCodePattern.MatchString(location) {
		zipPrefix = location[:zipPrefixLength]
	}
	lowered := strings.ToLower(location)

	return filterBreweries(candidates, func(b models.Brewery) bool {
		return broadMatch(location, lowered, zipPrefix, b)
	})
}

func exactMatch(location string, b models.Brewery) bool {
	return strings.EqualFold(b.City, location) || strings.Contains(b.Address, location)
}

func broadMatch(location, lowered, zipPrefix string, b models.Brewery) bool {
	if strings.Contains(strings.ToLower(b.City), lowered) || strings.Contains(b.Address, location) {
		return true
	}

	if zipPrefix == "" {
		return false
	}
	for _, token := range zipTokenPattern.FindAllString(b.Address, -1) {
		if strings.HasPrefix(token, zipPrefix) {
			return true
		}
	}

	return false
}

func filterBreweries(candidates []models.Brewery, keep func(models.Brewery) bool) []models.SearchResult {
	results := make([]models.SearchResult, 0)
	for _, candidate := range candidates {
		if keep(candidate) {
			results = append(results, models.SearchResult{Brewery: candidate})
		}
	}

	return results
}
