package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/event-attendance-api/internal/models"
)

const (
	reasonPartialRegistration = "checked in at registration but never entered the venue"
	reasonNoCheckIn           = "no check-in recorded"
	reasonNoAttendance        = "no attendance recorded"
)

// absenteeNamespace seeds deterministic ids for backfilled records so that
// re-running finalization yields identical rows.
var absenteeNamespace = uuid.MustParse("6f1c2a4e-5d0b-4c1e-9a77-3b1f0e2d8c55")

// FinalizerThresholds are the inside-ratio cut-offs for PRESENT and IDLE.
type FinalizerThresholds struct {
	PresentRatio float64
	IdleRatio    float64
}

// DefaultFinalizerThresholds are 70% for PRESENT and 30% for IDLE.
var DefaultFinalizerThresholds = FinalizerThresholds{PresentRatio: 0.70, IdleRatio: 0.30}

// AttendanceFinalizer classifies attendance records for a concluded event.
type AttendanceFinalizer struct {
	thresholds FinalizerThresholds
}

// NewAttendanceFinalizer constructs a finalizer; invalid thresholds fall back to defaults.
func NewAttendanceFinalizer(thresholds FinalizerThresholds) *AttendanceFinalizer {
	if thresholds.PresentRatio <= 0 || thresholds.PresentRatio > 1 ||
		thresholds.IdleRatio < 0 || thresholds.IdleRatio > thresholds.PresentRatio {
		thresholds = DefaultFinalizerThresholds
	}
	return &AttendanceFinalizer{thresholds: thresholds}
}

// FinalizeEvent runs finalization with the default thresholds.
func FinalizeEvent(event models.Event, records []models.AttendanceRecord, samplesByRecord map[string][]models.PresenceSample, roster []models.Student, now time.Time) models.FinalizationResult {
	return NewAttendanceFinalizer(DefaultFinalizerThresholds).Finalize(event, records, samplesByRecord, roster, now)
}

// Finalize returns the records whose status changes plus new ABSENT records
// for roster students without any record. It performs no I/O.
func (f *AttendanceFinalizer) Finalize(event models.Event, records []models.AttendanceRecord, samplesByRecord map[string][]models.PresenceSample, roster []models.Student, now time.Time) models.FinalizationResult {
	result := models.FinalizationResult{EventID: event.ID, FinalizedAt: now}

	recorded := make(map[string]struct{}, len(records))
	for _, record := range records {
		recorded[record.StudentID] = struct{}{}

		status, reason := f.classify(event, record, samplesByRecord[record.ID])
		if status == record.Status {
			continue
		}
		updated := record
		updated.Status = status
		updated.Reason = reason
		timeOut := now
		updated.TimeOut = &timeOut
		updated.UpdatedAt = now
		result.Updated = append(result.Updated, updated)
	}

	students := make([]models.Student, len(roster))
	copy(students, roster)
	sort.SliceStable(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	for _, student := range students {
		if !student.Active {
			continue
		}
		if _, ok := recorded[student.ID]; ok {
			continue
		}
		recorded[student.ID] = struct{}{}
		result.Created = append(result.Created, newAbsentRecord(event.ID, student.ID, now))
	}
	return result
}

func (f *AttendanceFinalizer) classify(event models.Event, record models.AttendanceRecord, samples []models.PresenceSample) (models.AttendanceStatus, *string) {
	if record.Status == models.AttendanceStatusPartiallyRegistered {
		return models.AttendanceStatusAbsent, stringPtr(reasonPartialRegistration)
	}

	late := record.TimeIn != nil && record.TimeIn.After(event.StartTime)
	if !event.LocationMonitoringEnabled {
		if record.TimeIn == nil {
			return models.AttendanceStatusAbsent, stringPtr(reasonNoCheckIn)
		}
		if late {
			return models.AttendanceStatusLate, nil
		}
		return models.AttendanceStatusPresent, nil
	}

	ratio := InsideRatio(samples, event.StartTime, event.EndTime)
	switch {
	case ratio >= f.thresholds.PresentRatio:
		if late {
			return models.AttendanceStatusLate, nil
		}
		return models.AttendanceStatusPresent, nil
	case ratio >= f.thresholds.IdleRatio:
		return models.AttendanceStatusIdle, stringPtr(fmt.Sprintf("inside the venue for %.1f%% of the event", ratio*100))
	default:
		return models.AttendanceStatusAbsent, stringPtr(fmt.Sprintf("inside the venue for only %.1f%% of the event", ratio*100))
	}
}

// ComputeInsideDuration sums the time spent inside the boundary within
// [start, end]. Each sample holds its state until the next sample; fewer
// than two samples carry no evidence and yield zero.
func ComputeInsideDuration(samples []models.PresenceSample, start, end time.Time) time.Duration {
	if len(samples) < 2 || !start.Before(end) {
		return 0
	}
	sorted := make([]models.PresenceSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].RecordedAt.Before(sorted[j].RecordedAt) })

	var total time.Duration
	for i := 0; i+1 < len(sorted); i++ {
		cur, next := sorted[i], sorted[i+1]
		if !cur.InsideBoundary {
			continue
		}
		from := laterOf(cur.RecordedAt, start)
		to := earlierOf(next.RecordedAt, end)
		if from.Before(to) {
			total += to.Sub(from)
		}
	}
	return total
}

// InsideRatio is the inside duration divided by the event window.
func InsideRatio(samples []models.PresenceSample, start, end time.Time) float64 {
	window := end.Sub(start)
	if window <= 0 {
		return 0
	}
	return float64(ComputeInsideDuration(samples, start, end)) / float64(window)
}

func newAbsentRecord(eventID, studentID string, now time.Time) models.AttendanceRecord {
	return models.AttendanceRecord{
		ID:        uuid.NewSHA1(absenteeNamespace, []byte(eventID+"/"+studentID)).String(),
		StudentID: studentID,
		EventID:   eventID,
		Status:    models.AttendanceStatusAbsent,
		Reason:    stringPtr(reasonNoAttendance),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func stringPtr(s string) *string {
	return &s
}
