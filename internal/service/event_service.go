package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/event-attendance-api/internal/dto"
	"github.com/noah-isme/event-attendance-api/internal/models"
	appErrors "github.com/noah-isme/event-attendance-api/pkg/errors"
)

type eventRepository interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
	ListByStatuses(ctx context.Context, statuses []models.EventStatus) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event, expectedVersion int) (bool, error)
	UpdateStatus(ctx context.Context, id string, from, to models.EventStatus) (bool, error)
}

type locationFinder interface {
	FindByID(ctx context.Context, id string) (*models.Location, error)
}

type eligibilityValidator interface {
	Validate(ctx context.Context, spec models.EligibilitySpec) error
}

// EventService handles administrative writes on events.
type EventService struct {
	repo        eventRepository
	locations   locationFinder
	eligibility eligibilityValidator
	validator   *validator.Validate
	metrics     *MetricsService
	logger      *zap.Logger
	bounds      DurationBounds
	now         func() time.Time
}

// NewEventService constructs the service.
func NewEventService(repo eventRepository, locations locationFinder, eligibility eligibilityValidator, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, bounds DurationBounds) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		spec, ok := sl.Current().Interface().(models.EligibilitySpec)
		if ok && !spec.HasTargets() {
			sl.ReportError(spec.AllStudents, "eligibility", "Eligibility", "eligibility", "")
		}
	}, models.EligibilitySpec{})
	return &EventService{
		repo:        repo,
		locations:   locations,
		eligibility: eligibility,
		validator:   validate,
		metrics:     metrics,
		logger:      logger,
		bounds:      bounds,
		now:         time.Now,
	}
}

// Get returns an event by id.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// Status reports the stored status together with the one derived from now.
func (s *EventService) Status(ctx context.Context, id string) (*dto.EventStatusResponse, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &dto.EventStatusResponse{
		EventID:         event.ID,
		StoredStatus:    event.Status,
		EffectiveStatus: EvaluateEventStatus(*event, now),
		EvaluatedAt:     now,
	}, nil
}

// Create validates and stores a new event.
func (s *EventService) Create(ctx context.Context, req dto.EventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	now := s.now()
	window := EventWindow{RegistrationStart: req.RegistrationStart, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := ValidateEventWindow(window, now, s.bounds, true); err != nil {
		return nil, err
	}

	event := &models.Event{
		ID:        uuid.NewString(),
		Version:   1,
		CreatedAt: now,
	}
	applyEventRequest(event, req, now)
	if err := s.checkReferences(ctx, event); err != nil {
		return nil, err
	}
	if err := s.checkConflicts(ctx, *event); err != nil {
		return nil, err
	}
	event.Status = EvaluateEventStatus(*event, now)

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("venue_location_id", event.VenueLocationID))
	return event, nil
}

// Update rewrites an event that has not started yet.
func (s *EventService) Update(ctx context.Context, id string, req dto.EventRequest) (*models.Event, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if rejection := EvaluateEventStatus(*current, now).CheckAction(models.EventActionUpdate); rejection != nil {
		return nil, rejectTransition(rejection)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	window := EventWindow{RegistrationStart: req.RegistrationStart, StartTime: req.StartTime, EndTime: req.EndTime}
	// an already open registration may keep its original start
	requireFutureRegistration := !req.RegistrationStart.Equal(current.RegistrationStart)
	if err := ValidateEventWindow(window, now, s.bounds, requireFutureRegistration); err != nil {
		return nil, err
	}

	updated := *current
	applyEventRequest(&updated, req, now)
	if err := s.checkReferences(ctx, &updated); err != nil {
		return nil, err
	}
	if err := s.checkConflicts(ctx, updated); err != nil {
		return nil, err
	}
	updated.Status = EvaluateEventStatus(updated, now)

	ok, err := s.repo.Update(ctx, &updated, current.Version)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrConflict, "event was modified concurrently; reload and retry")
	}
	updated.Version = current.Version + 1
	s.logger.Info("event updated", zap.String("event_id", updated.ID), zap.Int("version", updated.Version))
	return &updated, nil
}

// Cancel moves a non-terminal event to CANCELLED.
func (s *EventService) Cancel(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rejection := EvaluateEventStatus(*event, s.now()).CheckAction(models.EventActionCancel); rejection != nil {
		return nil, rejectTransition(rejection)
	}
	ok, err := s.repo.UpdateStatus(ctx, event.ID, event.Status, models.EventStatusCancelled)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel event")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "event status changed; reload and retry")
	}
	s.metrics.RecordStatusTransition(event.Status, models.EventStatusCancelled)
	s.logger.Info("event cancelled", zap.String("event_id", event.ID), zap.String("from", string(event.Status)))
	event.Status = models.EventStatusCancelled
	event.Version++
	return event, nil
}

func applyEventRequest(event *models.Event, req dto.EventRequest, now time.Time) {
	event.Name = strings.TrimSpace(req.Name)
	event.RegistrationStart = req.RegistrationStart
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime
	event.Eligibility = req.Eligibility
	event.FacialVerificationEnabled = req.FacialVerificationEnabled
	event.LocationMonitoringEnabled = req.LocationMonitoringEnabled
	event.VenueLocationID = strings.TrimSpace(req.VenueLocationID)
	event.RegistrationLocationID = nil
	if req.RegistrationLocationID != nil {
		if trimmed := strings.TrimSpace(*req.RegistrationLocationID); trimmed != "" {
			event.RegistrationLocationID = &trimmed
		}
	}
	event.UpdatedAt = now
}

// checkReferences verifies the locations carry the right purpose and that
// the eligibility spec points at existing roster entries.
func (s *EventService) checkReferences(ctx context.Context, event *models.Event) error {
	if err := s.checkLocation(ctx, event.VenueLocationID, models.LocationPurposeVenue); err != nil {
		return err
	}
	if event.RegistrationLocationID != nil {
		if err := s.checkLocation(ctx, *event.RegistrationLocationID, models.LocationPurposeRegistration); err != nil {
			return err
		}
	}
	return s.eligibility.Validate(ctx, event.Eligibility)
}

func (s *EventService) checkLocation(ctx context.Context, id string, purpose models.LocationPurpose) error {
	location, err := s.locations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, strings.ToLower(string(purpose))+" location not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load location")
	}
	if location.Purpose != purpose {
		return appErrors.Clone(appErrors.ErrValidation, "location "+location.Name+" is not a "+strings.ToLower(string(purpose))+" location")
	}
	return nil
}

func (s *EventService) checkConflicts(ctx context.Context, candidate models.Event) error {
	existing, err := s.repo.ListByStatuses(ctx, models.SchedulableEventStatuses)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduled events")
	}
	conflicts := DetectLocationConflicts(candidate, existing, candidate.ID)
	if len(conflicts) == 0 {
		return nil
	}
	s.metrics.RecordLocationConflict()
	conflictErr := &models.EventConflictError{Conflicts: conflicts}
	appErr := appErrors.WithDetails(appErrors.ErrConflict, conflictErr.Error(), conflictErr)
	appErr.Err = conflictErr
	return appErr
}
