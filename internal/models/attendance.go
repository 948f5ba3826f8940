package models

import "time"

// AttendanceStatus represents the verdict for a student at an event.
type AttendanceStatus string

const (
	AttendanceStatusPartiallyRegistered AttendanceStatus = "PARTIALLY_REGISTERED"
	AttendanceStatusPresent             AttendanceStatus = "PRESENT"
	AttendanceStatusLate                AttendanceStatus = "LATE"
	AttendanceStatusIdle                AttendanceStatus = "IDLE"
	AttendanceStatusAbsent              AttendanceStatus = "ABSENT"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPartiallyRegistered, AttendanceStatusPresent, AttendanceStatusLate,
		AttendanceStatusIdle, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceRecord is the single attendance row per (student, event).
type AttendanceRecord struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	EventID    string           `db:"event_id" json:"event_id"`
	LocationID *string          `db:"location_id" json:"location_id,omitempty"`
	Status     AttendanceStatus `db:"status" json:"status"`
	Reason     *string          `db:"reason" json:"reason,omitempty"`
	TimeIn     *time.Time       `db:"time_in" json:"time_in,omitempty"`
	TimeOut    *time.Time       `db:"time_out" json:"time_out,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// PresenceSample is one geofence ping recorded for an attendance record.
type PresenceSample struct {
	RecordID       string    `db:"record_id" json:"record_id"`
	RecordedAt     time.Time `db:"recorded_at" json:"recorded_at"`
	InsideBoundary bool      `db:"inside_boundary" json:"inside_boundary"`
}

// FinalizationResult is the full set of record writes produced by finalization.
type FinalizationResult struct {
	EventID     string             `json:"event_id"`
	FinalizedAt time.Time          `json:"finalized_at"`
	Updated     []AttendanceRecord `json:"updated"`
	Created     []AttendanceRecord `json:"created"`
}

// Records returns updated and created records together.
func (r FinalizationResult) Records() []AttendanceRecord {
	out := make([]AttendanceRecord, 0, len(r.Updated)+len(r.Created))
	out = append(out, r.Updated...)
	return append(out, r.Created...)
}

// FinalizationSummary is returned to the administrator after finalizing.
type FinalizationSummary struct {
	EventID     string                   `json:"event_id"`
	FinalizedAt time.Time                `json:"finalized_at"`
	Updated     int                      `json:"updated"`
	Created     int                      `json:"created"`
	Verdicts    map[AttendanceStatus]int `json:"verdicts"`
}

// AttendanceSheetRow is one exported line of a finalized event's attendance.
type AttendanceSheetRow struct {
	StudentID   string           `db:"student_id" json:"student_id"`
	StudentName string           `db:"student_name" json:"student_name"`
	Status      AttendanceStatus `db:"status" json:"status"`
	Reason      *string          `db:"reason" json:"reason,omitempty"`
	TimeIn      *time.Time       `db:"time_in" json:"time_in,omitempty"`
	TimeOut     *time.Time       `db:"time_out" json:"time_out,omitempty"`
}
