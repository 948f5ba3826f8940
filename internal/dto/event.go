package dto

import (
	"time"

	"github.com/noah-isme/event-attendance-api/internal/models"
)

// EventRequest is the payload for creating or updating an event.
type EventRequest struct {
	Name                      string                 `json:"name" validate:"required,max=200"`
	RegistrationStart         time.Time              `json:"registration_start" validate:"required"`
	StartTime                 time.Time              `json:"start_time" validate:"required"`
	EndTime                   time.Time              `json:"end_time" validate:"required"`
	Eligibility               models.EligibilitySpec `json:"eligibility"`
	FacialVerificationEnabled bool                   `json:"facial_verification_enabled"`
	LocationMonitoringEnabled bool                   `json:"location_monitoring_enabled"`
	RegistrationLocationID    *string                `json:"registration_location_id" validate:"omitempty,min=1"`
	VenueLocationID           string                 `json:"venue_location_id" validate:"required"`
}

// EventStatusResponse reports the stored status next to the time-derived one.
type EventStatusResponse struct {
	EventID         string             `json:"event_id"`
	StoredStatus    models.EventStatus `json:"stored_status"`
	EffectiveStatus models.EventStatus `json:"effective_status"`
	EvaluatedAt     time.Time          `json:"evaluated_at"`
}
