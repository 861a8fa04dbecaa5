// Package catalog loads a static brewery listing from a YAML file. It is used as the
// candidate source when no database is configured, and by the one-off search command.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/UnknownOlympus/hopmap/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrMissingID is returned when a catalog entry has no id.
var ErrMissingID = errors.New("catalog entry has no id")

type document struct {
	Breweries []models.Brewery `yaml:"breweries"`
}

// Catalog is an immutable, in-memory list of breweries.
type Catalog struct {
	breweries []models.Brewery
}

// New wraps an existing listing. The slice is copied.
func New(breweries []models.Brewery) *Catalog {
	return &Catalog{breweries: append([]models.Brewery(nil), breweries...)}
}

// Load reads a catalog file of the form:
//
//	breweries:
//	  - id: b1
//	    name: Alpha
//	    city: Columbus
//	    address: 1 High St, Columbus, OH 43215
//	    latitude: 39.96
//	    longitude: -83.0
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	return Parse(data)
}

// Parse decodes catalog YAML. Entry ids must be present and unique.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Breweries))
	for i, brewery := range doc.Breweries {
		if brewery.ID == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrMissingID)
		}
		if _, ok := seen[brewery.ID]; ok {
			return nil, fmt.Errorf("entry %d: duplicate id %q", i, brewery.ID)
		}
		seen[brewery.ID] = struct{}{}
	}

	return &Catalog{breweries: doc.Breweries}, nil
}

// ListBreweries returns a copy of the catalog in file order.
func (c *Catalog) ListBreweries(_ context.Context) ([]models.Brewery, error) {
	return append([]models.Brewery(nil), c.breweries...), nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.breweries)
}
