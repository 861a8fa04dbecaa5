package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/hopmap/internal/models"
	"github.com/jackc/pgx/v5/pgtype"
)

// ListBreweries returns every open brewery ordered by id. Missing coordinates stay nil.
func (r *Repository) ListBreweries(ctx context.Context) ([]models.Brewery, error) {
	query := `
		SELECT id, name, COALESCE(city, ''), COALESCE(address, ''), latitude, longitude
		FROM breweries
		WHERE is_closed = false
		ORDER BY id ASC;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query breweries: %w", err)
	}
	defer rows.Close()

	breweries := make([]models.Brewery, 0)
	for rows.Next() {
		var (
			brewery  models.Brewery
			lat, lng pgtype.Float8
		)
		if errScan := rows.Scan(&brewery.ID, &brewery.Name, &brewery.City, &brewery.Address, &lat, &lng); errScan != nil {
			return nil, fmt.Errorf("failed to scan brewery: %w", errScan)
		}
		if lat.Valid {
			brewery.Latitude = &lat.Float64
		}
		if lng.Valid {
			brewery.Longitude = &lng.Float64
		}
		breweries = append(breweries, brewery)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Breweries loaded", "count", len(breweries))

	return breweries, nil
}

// FetchBreweriesForGeocoding retrieves open breweries that have an address but no coordinates
// and fewer than 5 failed geocoding attempts, oldest first, limited to limit rows.
func (r *Repository) FetchBreweriesForGeocoding(ctx context.Context, limit int) ([]models.Task, error) {
	var tasks []models.Task
	query := `
		SELECT id, address
		FROM breweries
		WHERE
			latitude IS NULL
			AND is_closed = false
			AND geocoding_attempts < 5
			AND address IS NOT NULL AND address <> ''
		ORDER BY created_at ASC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query breweries without coordinates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var task models.Task
		if errScan := rows.Scan(&task.ID, &task.Address); errScan != nil {
			return nil, fmt.Errorf("failed to scan brewery without coordinates: %w", errScan)
		}
		r.log.DebugContext(ctx, "Brewery without coordinates found", "id", task.ID, "address", task.Address)
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return tasks, nil
}

// UpdateBreweryCoordinates stores the geocoded position and clears the last geocoding error.
func (r *Repository) UpdateBreweryCoordinates(ctx context.Context, breweryID string, coords models.Coordinates) error {
	query := `
		UPDATE breweries
		SET
			latitude = $1,
			longitude = $2,
			geocoding_error = NULL
		WHERE
			id = $3;
	`

	_, err := r.db.Exec(ctx, query, coords.Latitude, coords.Longitude, breweryID)
	if err != nil {
		return fmt.Errorf("failed to update brewery coordinates: %w", err)
	}

	return nil
}

// IncrementFailureCount bumps the geocoding attempt count of a brewery and records the error message.
func (r *Repository) IncrementFailureCount(ctx context.Context, breweryID string, errMsg string) error {
	query := `
		UPDATE breweries
		SET
			geocoding_attempts = geocoding_attempts + 1,
			geocoding_error = $1
		WHERE id = $2;
	`

	_, err := r.db.Exec(ctx, query, errMsg, breweryID)
	if err != nil {
		return fmt.Errorf("failed to update geocoding error and number of attempts: %w", err)
	}

	return nil
}
