package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-attendance-api/internal/models"
)

func TestAttendanceRepositoryListByEvent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "event_id", "location_id", "status", "reason", "time_in", "time_out", "created_at", "updated_at"}).
		AddRow("rec-1", "stu-1", "evt-1", "loc-1", "PRESENT", nil, now, nil, now, now).
		AddRow("rec-2", "stu-2", "evt-1", nil, "PARTIALLY_REGISTERED", nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_records WHERE event_id = $1")).
		WithArgs("evt-1").
		WillReturnRows(rows)

	records, err := repo.ListByEvent(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.NotNil(t, records[0].TimeIn)
	assert.Nil(t, records[1].TimeIn)
	assert.Equal(t, models.AttendanceStatusPartiallyRegistered, records[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListSamplesByEvent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"record_id", "recorded_at", "inside_boundary"}).
		AddRow("rec-1", now, true).
		AddRow("rec-1", now.Add(time.Minute), false)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN attendance_records ar ON ar.id = ps.record_id")).
		WithArgs("evt-1").
		WillReturnRows(rows)

	samples, err := repo.ListSamplesByEvent(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.False(t, samples[1].InsideBoundary)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListSheet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "student_name", "status", "reason", "time_in", "time_out"}).
		AddRow("stu-1", "Ada", "ABSENT", "no attendance recorded", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN students s ON s.id = ar.student_id")).
		WithArgs("evt-1").
		WillReturnRows(rows)

	sheet, err := repo.ListSheet(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Len(t, sheet, 1)
	require.NotNil(t, sheet[0].Reason)
	assert.Equal(t, "no attendance recorded", *sheet[0].Reason)
	require.NoError(t, mock.ExpectationsWereMet())
}

func finalizationFixture(now time.Time) models.FinalizationResult {
	reason := "no attendance recorded"
	timeIn := now.Add(-2 * time.Hour)
	return models.FinalizationResult{
		EventID:     "evt-1",
		FinalizedAt: now,
		Updated: []models.AttendanceRecord{
			{ID: "rec-1", StudentID: "stu-1", EventID: "evt-1", Status: models.AttendanceStatusLate, TimeIn: &timeIn, TimeOut: &now, UpdatedAt: now},
		},
		Created: []models.AttendanceRecord{
			{ID: "rec-2", StudentID: "stu-2", EventID: "evt-1", Status: models.AttendanceStatusAbsent, Reason: &reason, CreatedAt: now, UpdatedAt: now},
		},
	}
}

func TestAttendanceRepositoryApplyFinalizationCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now().UTC()
	result := finalizationFixture(now)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE attendance_records SET status = $1, reason = $2, time_out = $3, updated_at = $4 WHERE id = $5")).
		WithArgs(models.AttendanceStatusLate, nil, now, now, "rec-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_id, event_id) DO NOTHING")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE events SET status = $1, version = version + 1, updated_at = $2 WHERE id = $3 AND status = $4")).
		WithArgs(models.EventStatusFinalized, now, "evt-1", models.EventStatusConcluded).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.ApplyFinalization(context.Background(), models.EventStatusConcluded, result)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryApplyFinalizationStaleStatusRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now().UTC()
	result := finalizationFixture(now)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE attendance_records SET status")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance_records")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE events SET status = $1")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ok, err := repo.ApplyFinalization(context.Background(), models.EventStatusConcluded, result)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryApplyFinalizationErrorRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	result := finalizationFixture(time.Now().UTC())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE attendance_records SET status")).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	ok, err := repo.ApplyFinalization(context.Background(), models.EventStatusConcluded, result)
	require.Error(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
