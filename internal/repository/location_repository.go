package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/event-attendance-api/internal/models"
)

// LocationRepository reads geofenced locations.
type LocationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository constructs the repository.
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// FindByID loads a location. It returns sql.ErrNoRows when absent.
func (r *LocationRepository) FindByID(ctx context.Context, id string) (*models.Location, error) {
	const query = `SELECT id, name, purpose, shape, center_lat, center_lon, radius_meters, boundary, created_at, updated_at
FROM locations WHERE id = $1`
	var location models.Location
	if err := r.db.GetContext(ctx, &location, query, id); err != nil {
		return nil, err
	}
	return &location, nil
}
