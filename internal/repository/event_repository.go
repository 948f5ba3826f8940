package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/event-attendance-api/internal/models"
)

const eventColumns = `id, name, registration_start, start_time, end_time, status, eligibility,
facial_verification_enabled, location_monitoring_enabled, registration_location_id, venue_location_id,
version, created_at, updated_at`

// EventRepository persists events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// FindByID loads an event. It returns sql.ErrNoRows when absent.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// ListByStatuses returns every event whose stored status is one of statuses.
func (r *EventRepository) ListByStatuses(ctx context.Context, statuses []models.EventStatus) ([]models.Event, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE status = ANY($1) ORDER BY start_time ASC`
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, pq.Array(values)); err != nil {
		return nil, fmt.Errorf("list events by status: %w", err)
	}
	return events, nil
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	const query = `
INSERT INTO events (id, name, registration_start, start_time, end_time, status, eligibility,
	facial_verification_enabled, location_monitoring_enabled, registration_location_id, venue_location_id,
	version, created_at, updated_at)
VALUES (:id, :name, :registration_start, :start_time, :end_time, :status, :eligibility,
	:facial_verification_enabled, :location_monitoring_enabled, :registration_location_id, :venue_location_id,
	:version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields when the stored version still equals
// expectedVersion. It reports false when another writer got there first.
func (r *EventRepository) Update(ctx context.Context, event *models.Event, expectedVersion int) (bool, error) {
	const query = `
UPDATE events SET name = $1, registration_start = $2, start_time = $3, end_time = $4, status = $5,
	eligibility = $6, facial_verification_enabled = $7, location_monitoring_enabled = $8,
	registration_location_id = $9, venue_location_id = $10, version = version + 1, updated_at = $11
WHERE id = $12 AND version = $13`
	result, err := r.db.ExecContext(ctx, query,
		event.Name,
		event.RegistrationStart,
		event.StartTime,
		event.EndTime,
		event.Status,
		event.Eligibility,
		event.FacialVerificationEnabled,
		event.LocationMonitoringEnabled,
		event.RegistrationLocationID,
		event.VenueLocationID,
		event.UpdatedAt,
		event.ID,
		expectedVersion,
	)
	if err != nil {
		return false, fmt.Errorf("update event: %w", err)
	}
	return affectedOne(result, "update event")
}

// UpdateStatus moves an event from one status to another only if it is
// still in from. It reports whether the row changed.
func (r *EventRepository) UpdateStatus(ctx context.Context, id string, from, to models.EventStatus) (bool, error) {
	const query = `UPDATE events SET status = $1, version = version + 1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("update event status: %w", err)
	}
	return affectedOne(result, "update event status")
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func affectedOne(result rowsAffecter, op string) (bool, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return affected > 0, nil
}
