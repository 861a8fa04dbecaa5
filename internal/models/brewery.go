package models

import "math"

// Brewery is a directory listing with optional coordinates. Listings are supplied by a
// candidate source and are never mutated by the search pipeline.
type Brewery struct {
	ID        string   `json:"id"                yaml:"id"`
	Name      string   `json:"name"              yaml:"name"`
	City      string   `json:"city,omitempty"    yaml:"city"`
	Address   string   `json:"address,omitempty" yaml:"address"`
	Latitude  *float64 `json:"latitude"          yaml:"latitude"`
	Longitude *float64 `json:"longitude"         yaml:"longitude"`
}

// Coordinates returns the listing position. The second value is false when either half of
// the pair is missing, not finite, or outside the valid latitude/longitude range.
func (b Brewery) Coordinates() (Coordinates, bool) {
	if b.Latitude == nil || b.Longitude == nil {
		return Coordinates{}, false
	}

	coords := Coordinates{Latitude: *b.Latitude, Longitude: *b.Longitude}
	if !coords.Valid() {
		return Coordinates{}, false
	}

	return coords, true
}

// Valid reports whether both values are finite and within [-90, 90] / [-180, 180].
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return false
	}

	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// SearchResult is a brewery matched by a nearby search. DistanceMiles is set only when the
// match was made by geodistance.
type SearchResult struct {
	Brewery

	DistanceMiles *float64 `json:"distanceMiles,omitempty"`
}
