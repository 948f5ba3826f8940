package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-attendance-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var eventRowColumns = []string{
	"id", "name", "registration_start", "start_time", "end_time", "status", "eligibility",
	"facial_verification_enabled", "location_monitoring_enabled", "registration_location_id", "venue_location_id",
	"version", "created_at", "updated_at",
}

func TestEventRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	start := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(eventRowColumns).
		AddRow("evt-1", "Orientation", start.Add(-time.Hour), start, start.Add(2*time.Hour), "UPCOMING",
			[]byte(`{"all_students":false,"section_ids":["sec-1"],"year_levels":[1]}`),
			true, true, "loc-reg", "loc-venue", 3, start, start)
	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE id = $1")).
		WithArgs("evt-1").
		WillReturnRows(rows)

	event, err := repo.FindByID(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusUpcoming, event.Status)
	assert.Equal(t, []string{"sec-1"}, event.Eligibility.SectionIDs)
	assert.Equal(t, []int{1}, event.Eligibility.YearLevels)
	require.NotNil(t, event.RegistrationLocationID)
	assert.Equal(t, "loc-reg", event.RegistrationLocation())
	assert.Equal(t, 3, event.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryListByStatuses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	start := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(eventRowColumns).
		AddRow("evt-1", "A", start.Add(-time.Hour), start, start.Add(time.Hour), "REGISTRATION", []byte(`{"all_students":true}`), false, false, nil, "loc-1", 1, start, start).
		AddRow("evt-2", "B", start, start.Add(time.Hour), start.Add(2*time.Hour), "UPCOMING", []byte(`{"all_students":true}`), false, true, nil, "loc-1", 1, start, start)
	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE status = ANY($1) ORDER BY start_time ASC")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	events, err := repo.ListByStatuses(context.Background(), models.SchedulableEventStatuses)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Nil(t, events[0].RegistrationLocationID)
	assert.Equal(t, "loc-1", events[0].RegistrationLocation())
	assert.True(t, events[1].LocationMonitoringEnabled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	now := time.Now().UTC()
	event := &models.Event{
		ID:                "evt-1",
		Name:              "Orientation",
		RegistrationStart: now.Add(time.Hour),
		StartTime:         now.Add(2 * time.Hour),
		EndTime:           now.Add(3 * time.Hour),
		Status:            models.EventStatusUpcoming,
		Eligibility:       models.EligibilitySpec{AllStudents: true},
		VenueLocationID:   "loc-1",
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), event))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryUpdateVersionMismatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	now := time.Now().UTC()
	event := &models.Event{ID: "evt-1", Name: "Renamed", Status: models.EventStatusUpcoming, VenueLocationID: "loc-1", UpdatedAt: now}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE events SET name = $1")).
		WithArgs("Renamed", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), models.EventStatusUpcoming,
			sqlmock.AnyArg(), false, false, nil, "loc-1", now, "evt-1", 4).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Update(context.Background(), event, 4)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryUpdateStatusIsConditional(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE events SET status = $1, version = version + 1, updated_at = $2 WHERE id = $3 AND status = $4")).
		WithArgs(models.EventStatusOngoing, sqlmock.AnyArg(), "evt-1", models.EventStatusRegistration).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE events SET status = $1")).
		WithArgs(models.EventStatusOngoing, sqlmock.AnyArg(), "evt-2", models.EventStatusRegistration).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.UpdateStatus(context.Background(), "evt-1", models.EventStatusRegistration, models.EventStatusOngoing)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.UpdateStatus(context.Background(), "evt-2", models.EventStatusRegistration, models.EventStatusOngoing)
	require.NoError(t, err)
	assert.False(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}
