package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/event-attendance-api/internal/dto"
	"github.com/noah-isme/event-attendance-api/internal/models"
	appErrors "github.com/noah-isme/event-attendance-api/pkg/errors"
	"github.com/noah-isme/event-attendance-api/pkg/geo"
)

// GeofenceService answers whether a device coordinate is inside a location.
type GeofenceService struct {
	locations locationFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGeofenceService constructs the service.
func NewGeofenceService(locations locationFinder, validate *validator.Validate, logger *zap.Logger) *GeofenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeofenceService{locations: locations, validator: validate, logger: logger}
}

// Check tests the coordinate against the location's circle or polygon.
// Circles also report the distance to their center.
func (s *GeofenceService) Check(ctx context.Context, locationID string, req dto.GeofenceCheckRequest) (*dto.GeofenceCheckResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid coordinate")
	}
	location, err := s.locations.FindByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "location not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load location")
	}

	lat, lon := *req.Latitude, *req.Longitude
	resp := &dto.GeofenceCheckResponse{
		LocationID: location.ID,
		Shape:      location.Shape,
		Inside:     location.Contains(lat, lon),
	}
	if location.Shape == models.GeofenceShapeCircle && location.CenterLat != nil && location.CenterLon != nil {
		distance := geo.HaversineMeters(lat, lon, *location.CenterLat, *location.CenterLon)
		resp.DistanceMeters = &distance
	}
	return resp, nil
}
