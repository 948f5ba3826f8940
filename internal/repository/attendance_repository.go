package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/event-attendance-api/internal/models"
	"github.com/noah-isme/event-attendance-api/pkg/database"
)

var errEventStatusChanged = errors.New("event status changed")

// AttendanceRepository reads attendance records and presence samples and
// writes finalization results.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListByEvent returns every attendance record of the event.
func (r *AttendanceRepository) ListByEvent(ctx context.Context, eventID string) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, student_id, event_id, location_id, status, reason, time_in, time_out, created_at, updated_at
FROM attendance_records WHERE event_id = $1 ORDER BY student_id`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, eventID); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return records, nil
}

// ListSamplesByEvent returns the presence samples of every record of the event.
func (r *AttendanceRepository) ListSamplesByEvent(ctx context.Context, eventID string) ([]models.PresenceSample, error) {
	const query = `SELECT ps.record_id, ps.recorded_at, ps.inside_boundary
FROM presence_samples ps JOIN attendance_records ar ON ar.id = ps.record_id
WHERE ar.event_id = $1 ORDER BY ps.record_id, ps.recorded_at`
	var samples []models.PresenceSample
	if err := r.db.SelectContext(ctx, &samples, query, eventID); err != nil {
		return nil, fmt.Errorf("list presence samples: %w", err)
	}
	return samples, nil
}

// ListSheet returns the event's attendance joined with student names.
func (r *AttendanceRepository) ListSheet(ctx context.Context, eventID string) ([]models.AttendanceSheetRow, error) {
	const query = `SELECT ar.student_id, COALESCE(s.full_name, '') AS student_name, ar.status, ar.reason, ar.time_in, ar.time_out
FROM attendance_records ar LEFT JOIN students s ON s.id = ar.student_id
WHERE ar.event_id = $1 ORDER BY student_name, ar.student_id`
	var rows []models.AttendanceSheetRow
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("list attendance sheet: %w", err)
	}
	return rows, nil
}

// ApplyFinalization writes verdicts, inserts backfilled absentees and marks
// the event FINALIZED in one transaction. The event row is only flipped
// while it still holds expectedStatus; otherwise nothing is written and
// false is returned. Absentees that already have a record are skipped.
func (r *AttendanceRepository) ApplyFinalization(ctx context.Context, expectedStatus models.EventStatus, result models.FinalizationResult) (bool, error) {
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const updateQuery = `UPDATE attendance_records SET status = $1, reason = $2, time_out = $3, updated_at = $4 WHERE id = $5`
		for _, record := range result.Updated {
			if _, err := tx.ExecContext(ctx, updateQuery, record.Status, record.Reason, record.TimeOut, record.UpdatedAt, record.ID); err != nil {
				return fmt.Errorf("update attendance record %s: %w", record.ID, err)
			}
		}

		const insertQuery = `
INSERT INTO attendance_records (id, student_id, event_id, location_id, status, reason, time_in, time_out, created_at, updated_at)
VALUES (:id, :student_id, :event_id, :location_id, :status, :reason, :time_in, :time_out, :created_at, :updated_at)
ON CONFLICT (student_id, event_id) DO NOTHING`
		for i := range result.Created {
			if _, err := tx.NamedExecContext(ctx, insertQuery, &result.Created[i]); err != nil {
				return fmt.Errorf("insert absentee record for %s: %w", result.Created[i].StudentID, err)
			}
		}

		const flipQuery = `UPDATE events SET status = $1, version = version + 1, updated_at = $2 WHERE id = $3 AND status = $4`
		res, err := tx.ExecContext(ctx, flipQuery, models.EventStatusFinalized, result.FinalizedAt, result.EventID, expectedStatus)
		if err != nil {
			return fmt.Errorf("finalize event: %w", err)
		}
		changed, err := affectedOne(res, "finalize event")
		if err != nil {
			return err
		}
		if !changed {
			return errEventStatusChanged
		}
		return nil
	})
	if errors.Is(err, errEventStatusChanged) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
