package models

import (
	"fmt"
	"strings"
	"time"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusUpcoming     EventStatus = "UPCOMING"
	EventStatusRegistration EventStatus = "REGISTRATION"
	EventStatusOngoing      EventStatus = "ONGOING"
	EventStatusConcluded    EventStatus = "CONCLUDED"
	EventStatusCancelled    EventStatus = "CANCELLED"
	EventStatusFinalized    EventStatus = "FINALIZED"
)

// EventStatuses lists every status in lifecycle order.
var EventStatuses = []EventStatus{
	EventStatusUpcoming,
	EventStatusRegistration,
	EventStatusOngoing,
	EventStatusConcluded,
	EventStatusCancelled,
	EventStatusFinalized,
}

// SchedulableEventStatuses are the statuses the status scheduler re-evaluates.
var SchedulableEventStatuses = []EventStatus{
	EventStatusUpcoming,
	EventStatusRegistration,
	EventStatusOngoing,
}

// Valid returns true when the status is a supported value.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusUpcoming, EventStatusRegistration, EventStatusOngoing,
		EventStatusConcluded, EventStatusCancelled, EventStatusFinalized:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status can never change again.
func (s EventStatus) Terminal() bool {
	return s == EventStatusCancelled || s == EventStatusFinalized
}

// ReleasesLocations reports whether an event in this status no longer occupies its locations.
func (s EventStatus) ReleasesLocations() bool {
	return s == EventStatusCancelled || s == EventStatusConcluded || s == EventStatusFinalized
}

// EventAction enumerates explicit administrative actions on an event.
type EventAction string

const (
	EventActionUpdate   EventAction = "UPDATE"
	EventActionCancel   EventAction = "CANCEL"
	EventActionFinalize EventAction = "FINALIZE"
)

// EventActions lists every administrative action.
var EventActions = []EventAction{EventActionUpdate, EventActionCancel, EventActionFinalize}

// eventActionRules maps (status, action) to a rejection reason; an empty
// reason means the action is allowed.
var eventActionRules = map[EventStatus]map[EventAction]string{
	EventStatusUpcoming: {
		EventActionUpdate:   "",
		EventActionCancel:   "",
		EventActionFinalize: "event has not started yet",
	},
	EventStatusRegistration: {
		EventActionUpdate:   "",
		EventActionCancel:   "",
		EventActionFinalize: "event registration is still open",
	},
	EventStatusOngoing: {
		EventActionUpdate:   "event is already in progress",
		EventActionCancel:   "",
		EventActionFinalize: "event is still in progress",
	},
	EventStatusConcluded: {
		EventActionUpdate:   "event has already concluded",
		EventActionCancel:   "",
		EventActionFinalize: "",
	},
	EventStatusCancelled: {
		EventActionUpdate:   "event has been cancelled",
		EventActionCancel:   "event is already cancelled",
		EventActionFinalize: "cancelled events cannot be finalized",
	},
	EventStatusFinalized: {
		EventActionUpdate:   "event has been finalized",
		EventActionCancel:   "finalized events cannot be cancelled",
		EventActionFinalize: "event is already finalized",
	},
}

// TransitionRejection explains why an action is not allowed in a status.
type TransitionRejection struct {
	Status EventStatus `json:"status"`
	Action EventAction `json:"action"`
	Reason string      `json:"reason"`
}

// Error implements the error interface.
func (r *TransitionRejection) Error() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("cannot %s event in status %s: %s", strings.ToLower(string(r.Action)), r.Status, r.Reason)
}

// CheckAction returns nil when the action is allowed from this status.
func (s EventStatus) CheckAction(action EventAction) *TransitionRejection {
	rules, ok := eventActionRules[s]
	if !ok {
		return &TransitionRejection{Status: s, Action: action, Reason: "unknown event status"}
	}
	reason, ok := rules[action]
	if !ok {
		return &TransitionRejection{Status: s, Action: action, Reason: "unknown action"}
	}
	if reason != "" {
		return &TransitionRejection{Status: s, Action: action, Reason: reason}
	}
	return nil
}

// Event is a scheduled gathering whose attendance is tracked by geofence.
type Event struct {
	ID                        string          `db:"id" json:"id"`
	Name                      string          `db:"name" json:"name"`
	RegistrationStart         time.Time       `db:"registration_start" json:"registration_start"`
	StartTime                 time.Time       `db:"start_time" json:"start_time"`
	EndTime                   time.Time       `db:"end_time" json:"end_time"`
	Status                    EventStatus     `db:"status" json:"status"`
	Eligibility               EligibilitySpec `db:"eligibility" json:"eligibility"`
	FacialVerificationEnabled bool            `db:"facial_verification_enabled" json:"facial_verification_enabled"`
	LocationMonitoringEnabled bool            `db:"location_monitoring_enabled" json:"location_monitoring_enabled"`
	RegistrationLocationID    *string         `db:"registration_location_id" json:"registration_location_id,omitempty"`
	VenueLocationID           string          `db:"venue_location_id" json:"venue_location_id"`
	Version                   int             `db:"version" json:"version"`
	CreatedAt                 time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt                 time.Time       `db:"updated_at" json:"updated_at"`
}

// RegistrationLocation returns the location used during the registration
// window; single-venue events register at the venue.
func (e Event) RegistrationLocation() string {
	if e.RegistrationLocationID != nil && *e.RegistrationLocationID != "" {
		return *e.RegistrationLocationID
	}
	return e.VenueLocationID
}

// RegistrationWindow is the half-open interval during which the registration location is used.
func (e Event) RegistrationWindow() Interval {
	return Interval{Start: e.RegistrationStart, End: e.StartTime}
}

// EventWindow is the half-open interval during which the venue is used.
func (e Event) EventWindow() Interval {
	return Interval{Start: e.StartTime, End: e.EndTime}
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open intervals share any instant.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Empty reports whether the interval contains no instant.
func (i Interval) Empty() bool {
	return !i.Start.Before(i.End)
}

// LocationUsage names which window of an event occupies a location.
type LocationUsage string

const (
	LocationUsageRegistration LocationUsage = "REGISTRATION"
	LocationUsageVenue        LocationUsage = "VENUE"
)

// ConflictingEvent describes an existing event that blocks a write.
type ConflictingEvent struct {
	EventID            string        `json:"event_id"`
	Name               string        `json:"name"`
	Status             EventStatus   `json:"status"`
	LocationID         string        `json:"location_id"`
	CandidateUsage     LocationUsage `json:"candidate_usage"`
	ExistingUsage      LocationUsage `json:"existing_usage"`
	RegistrationWindow Interval      `json:"registration_window"`
	EventWindow        Interval      `json:"event_window"`
}

// EventConflictError is returned when an event collides with existing ones.
type EventConflictError struct {
	Conflicts []ConflictingEvent `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *EventConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	names := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("location conflict with %d event(s): %s", len(e.Conflicts), strings.Join(names, ", "))
}
