package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-attendance-api/internal/models"
)

func TestLocationRepositoryFindPolygon(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLocationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "purpose", "shape", "center_lat", "center_lon", "radius_meters", "boundary", "created_at", "updated_at"}).
		AddRow("loc-1", "Gym", "VENUE", "POLYGON", nil, nil, nil,
			[]byte(`[{"lat":0,"lon":0},{"lat":0,"lon":1},{"lat":1,"lon":1},{"lat":1,"lon":0},{"lat":0,"lon":0}]`), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM locations WHERE id = $1")).
		WithArgs("loc-1").
		WillReturnRows(rows)

	location, err := repo.FindByID(context.Background(), "loc-1")
	require.NoError(t, err)
	assert.Equal(t, models.GeofenceShapePolygon, location.Shape)
	assert.Len(t, location.Boundary, 5)
	assert.True(t, location.Contains(0.5, 0.5))
	assert.False(t, location.Contains(1.5, 0.5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationRepositoryFindCircle(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLocationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "purpose", "shape", "center_lat", "center_lon", "radius_meters", "boundary", "created_at", "updated_at"}).
		AddRow("loc-2", "Gate", "REGISTRATION", "CIRCLE", 14.5995, 120.9842, 50.0, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM locations WHERE id = $1")).
		WithArgs("loc-2").
		WillReturnRows(rows)

	location, err := repo.FindByID(context.Background(), "loc-2")
	require.NoError(t, err)
	assert.Equal(t, models.LocationPurposeRegistration, location.Purpose)
	assert.Nil(t, location.Boundary)
	assert.True(t, location.Contains(14.5995, 120.9842))
	require.NoError(t, mock.ExpectationsWereMet())
}
