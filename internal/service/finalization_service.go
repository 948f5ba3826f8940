package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/event-attendance-api/internal/models"
	appErrors "github.com/noah-isme/event-attendance-api/pkg/errors"
)

type finalizationEventFinder interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

type finalizationAttendanceStore interface {
	ListByEvent(ctx context.Context, eventID string) ([]models.AttendanceRecord, error)
	ListSamplesByEvent(ctx context.Context, eventID string) ([]models.PresenceSample, error)
	ApplyFinalization(ctx context.Context, expectedStatus models.EventStatus, result models.FinalizationResult) (bool, error)
}

type rosterResolver interface {
	Resolve(ctx context.Context, spec models.EligibilitySpec) ([]models.Student, error)
}

type finalizationLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

// FinalizationService runs the one-time attendance classification for an event.
type FinalizationService struct {
	events    finalizationEventFinder
	records   finalizationAttendanceStore
	roster    rosterResolver
	locker    finalizationLocker
	finalizer *AttendanceFinalizer
	metrics   *MetricsService
	logger    *zap.Logger
	lockTTL   time.Duration
	now       func() time.Time
}

// NewFinalizationService constructs the service.
func NewFinalizationService(events finalizationEventFinder, records finalizationAttendanceStore, roster rosterResolver, locker finalizationLocker, finalizer *AttendanceFinalizer, metrics *MetricsService, logger *zap.Logger, lockTTL time.Duration) *FinalizationService {
	if finalizer == nil {
		finalizer = NewAttendanceFinalizer(DefaultFinalizerThresholds)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &FinalizationService{
		events:    events,
		records:   records,
		roster:    roster,
		locker:    locker,
		finalizer: finalizer,
		metrics:   metrics,
		logger:    logger,
		lockTTL:   lockTTL,
		now:       time.Now,
	}
}

func finalizationLockKey(eventID string) string {
	return "finalize:event:" + eventID
}

// Finalize classifies every expected student's attendance and moves the
// event to FINALIZED. All writes commit together; a failed call leaves the
// event CONCLUDED and may simply be retried.
func (s *FinalizationService) Finalize(ctx context.Context, eventID string) (*models.FinalizationSummary, error) {
	started := s.now()
	summary, err := s.finalize(ctx, eventID)
	if err != nil {
		s.metrics.RecordFinalization(finalizationOutcome(err), s.now().Sub(started), nil)
		return nil, err
	}
	s.metrics.RecordFinalization("finalized", s.now().Sub(started), summary.Verdicts)
	return summary, nil
}

func (s *FinalizationService) finalize(ctx context.Context, eventID string) (*models.FinalizationSummary, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	now := s.now()
	// the scheduler may lag behind the clock, so judge the time-derived status
	effective := EvaluateEventStatus(*event, now)
	if rejection := effective.CheckAction(models.EventActionFinalize); rejection != nil {
		return nil, rejectTransition(rejection)
	}

	key := finalizationLockKey(event.ID)
	token, acquired, err := s.locker.Acquire(ctx, key, s.lockTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire finalization lock")
	}
	if !acquired {
		return nil, appErrors.Clone(appErrors.ErrFinalizationInProgress, "event is already being finalized")
	}
	defer func() {
		if err := s.locker.Release(context.Background(), key, token); err != nil {
			s.logger.Warn("failed to release finalization lock", zap.String("event_id", event.ID), zap.Error(err))
		}
	}()

	records, err := s.records.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance records")
	}
	samples, err := s.records.ListSamplesByEvent(ctx, event.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load presence samples")
	}
	roster, err := s.roster.Resolve(ctx, event.Eligibility)
	if err != nil {
		return nil, err
	}

	result := s.finalizer.Finalize(*event, records, groupSamplesByRecord(samples), roster, now)

	applyStarted := s.now()
	transitioned, err := s.records.ApplyFinalization(ctx, event.Status, result)
	s.metrics.ObserveDBQuery("apply_finalization", s.now().Sub(applyStarted))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist finalization")
	}
	if !transitioned {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "event status changed during finalization; reload and retry")
	}

	summary := summarize(result)
	s.logger.Info("event finalized",
		zap.String("event_id", event.ID),
		zap.Int("updated", summary.Updated),
		zap.Int("backfilled", summary.Created),
		zap.Int("roster", len(roster)),
	)
	return summary, nil
}

func groupSamplesByRecord(samples []models.PresenceSample) map[string][]models.PresenceSample {
	grouped := make(map[string][]models.PresenceSample)
	for _, sample := range samples {
		grouped[sample.RecordID] = append(grouped[sample.RecordID], sample)
	}
	return grouped
}

func summarize(result models.FinalizationResult) *models.FinalizationSummary {
	verdicts := make(map[models.AttendanceStatus]int)
	for _, record := range result.Records() {
		verdicts[record.Status]++
	}
	return &models.FinalizationSummary{
		EventID:     result.EventID,
		FinalizedAt: result.FinalizedAt,
		Updated:     len(result.Updated),
		Created:     len(result.Created),
		Verdicts:    verdicts,
	}
}

func finalizationOutcome(err error) string {
	appErr := appErrors.FromError(err)
	switch appErr.Code {
	case appErrors.ErrInvalidState.Code:
		return "rejected"
	case appErrors.ErrFinalizationInProgress.Code:
		return "in_progress"
	case appErrors.ErrNotFound.Code, appErrors.ErrValidation.Code:
		return "invalid"
	default:
		return "failed"
	}
}
