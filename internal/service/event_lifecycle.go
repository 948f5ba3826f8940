package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/event-attendance-api/internal/models"
	appErrors "github.com/noah-isme/event-attendance-api/pkg/errors"
)

// EvaluateEventStatus derives an event's status from its windows and now.
// Terminal statuses are returned unchanged.
func EvaluateEventStatus(event models.Event, now time.Time) models.EventStatus {
	if event.Status.Terminal() {
		return event.Status
	}
	switch {
	case now.Before(event.RegistrationStart):
		return models.EventStatusUpcoming
	case now.Before(event.StartTime):
		return models.EventStatusRegistration
	case now.Before(event.EndTime):
		return models.EventStatusOngoing
	default:
		return models.EventStatusConcluded
	}
}

// Overlaps reports whether two half-open intervals intersect. It is the
// exported entry point for callers outside models; conflict detection uses
// the same Interval.Overlaps rule.
func Overlaps(a, b models.Interval) bool {
	return a.Overlaps(b)
}

type locationUse struct {
	locationID string
	usage      models.LocationUsage
	window     models.Interval
}

func locationUses(event models.Event) []locationUse {
	return []locationUse{
		{locationID: event.RegistrationLocation(), usage: models.LocationUsageRegistration, window: event.RegistrationWindow()},
		{locationID: event.VenueLocationID, usage: models.LocationUsageVenue, window: event.EventWindow()},
	}
}

// DetectLocationConflicts returns every event that occupies one of the
// candidate's locations while the candidate needs it. Events that released
// their locations, the candidate itself and excludeID are ignored. Each
// conflicting event is reported once, with the first colliding usage pair.
func DetectLocationConflicts(candidate models.Event, events []models.Event, excludeID string) []models.ConflictingEvent {
	candidateUses := locationUses(candidate)
	var conflicts []models.ConflictingEvent
	for _, existing := range events {
		if existing.ID == excludeID || (candidate.ID != "" && existing.ID == candidate.ID) {
			continue
		}
		if existing.Status.ReleasesLocations() {
			continue
		}
		if conflict, ok := firstCollision(candidateUses, existing); ok {
			conflicts = append(conflicts, conflict)
		}
	}
	return conflicts
}

func firstCollision(candidateUses []locationUse, existing models.Event) (models.ConflictingEvent, bool) {
	for _, c := range candidateUses {
		if c.locationID == "" || c.window.Empty() {
			continue
		}
		for _, e := range locationUses(existing) {
			if e.locationID != c.locationID || e.window.Empty() {
				continue
			}
			if c.window.Overlaps(e.window) {
				return models.ConflictingEvent{
					EventID:            existing.ID,
					Name:               existing.Name,
					Status:             existing.Status,
					LocationID:         c.locationID,
					CandidateUsage:     c.usage,
					ExistingUsage:      e.usage,
					RegistrationWindow: existing.RegistrationWindow(),
					EventWindow:        existing.EventWindow(),
				}, true
			}
		}
	}
	return models.ConflictingEvent{}, false
}

// DurationBounds limits how long an event may run.
type DurationBounds struct {
	Min time.Duration
	Max time.Duration
}

// EventWindow carries the three timestamps validated before a write.
type EventWindow struct {
	RegistrationStart time.Time
	StartTime         time.Time
	EndTime           time.Time
}

// ValidateEventWindow enforces ordering, future timestamps and duration
// bounds. When requireFutureRegistration is false the registration start
// may already have passed (an update of an event whose registration is open).
func ValidateEventWindow(w EventWindow, now time.Time, bounds DurationBounds, requireFutureRegistration bool) error {
	if w.RegistrationStart.IsZero() || w.StartTime.IsZero() || w.EndTime.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "registration_start, start_time and end_time are required")
	}
	if requireFutureRegistration && !w.RegistrationStart.After(now) {
		return appErrors.Clone(appErrors.ErrValidation, "registration start must be in the future")
	}
	if !w.StartTime.After(now) {
		return appErrors.Clone(appErrors.ErrValidation, "event start must be in the future")
	}
	if !w.EndTime.After(now) {
		return appErrors.Clone(appErrors.ErrValidation, "event end must be in the future")
	}
	if w.RegistrationStart.After(w.StartTime) {
		return appErrors.Clone(appErrors.ErrValidation, "registration must open before the event starts")
	}
	if !w.StartTime.Before(w.EndTime) {
		return appErrors.Clone(appErrors.ErrValidation, "event must end after it starts")
	}
	duration := w.EndTime.Sub(w.StartTime)
	if bounds.Min > 0 && duration < bounds.Min {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("event duration must be at least %d minutes", int(bounds.Min.Minutes())))
	}
	if bounds.Max > 0 && duration > bounds.Max {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("event duration must not exceed %d minutes", int(bounds.Max.Minutes())))
	}
	return nil
}

func rejectTransition(rejection *models.TransitionRejection) error {
	err := appErrors.WithDetails(appErrors.ErrInvalidState, rejection.Reason, rejection)
	err.Err = rejection
	return err
}
