package dto

import "github.com/noah-isme/event-attendance-api/internal/models"

// GeofenceCheckRequest carries the coordinate reported by a device.
type GeofenceCheckRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// GeofenceCheckResponse reports whether the coordinate is inside the location.
type GeofenceCheckResponse struct {
	LocationID     string               `json:"location_id"`
	Shape          models.GeofenceShape `json:"shape"`
	Inside         bool                 `json:"inside"`
	DistanceMeters *float64             `json:"distance_meters,omitempty"`
}
