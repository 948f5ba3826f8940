package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/event-attendance-api/internal/models"
)

type eventStatusStore interface {
	ListByStatuses(ctx context.Context, statuses []models.EventStatus) ([]models.Event, error)
	UpdateStatus(ctx context.Context, id string, from, to models.EventStatus) (bool, error)
}

// SchedulerTickResult summarises one pass of the status scheduler.
type SchedulerTickResult struct {
	Evaluated int
	Changed   int
	Skipped   int
	Failed    int
}

// EventStatusScheduler periodically moves non-terminal events along their
// time-driven lifecycle. It never finalizes or cancels events.
type EventStatusScheduler struct {
	repo     eventStatusStore
	metrics  *MetricsService
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewEventStatusScheduler constructs the scheduler.
func NewEventStatusScheduler(repo eventStatusStore, metrics *MetricsService, logger *zap.Logger, interval time.Duration) *EventStatusScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &EventStatusScheduler{
		repo:     repo,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs a tick immediately and then on every interval until ctx is
// cancelled. Calling Start on a running scheduler is a no-op.
func (s *EventStatusScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	ticker := time.NewTicker(s.interval)
	go func() {
		defer func() {
			ticker.Stop()
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			close(done)
		}()
		s.safeTick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.safeTick(ctx)
			}
		}
	}()
	s.logger.Sugar().Infow("event status scheduler started", "interval", s.interval)
}

// Done is closed once a started scheduler has stopped.
func (s *EventStatusScheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return s.done
}

func (s *EventStatusScheduler) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.RecordSchedulerTick(true, s.now())
			s.logger.Error("scheduler tick panicked", zap.Any("panic", r))
		}
	}()
	if _, err := s.Tick(ctx); err != nil {
		s.logger.Warn("scheduler tick failed, retrying next tick", zap.Error(err))
	}
}

// Tick re-evaluates every schedulable event once. Per-event failures are
// logged and counted; only a failure to load events fails the tick.
func (s *EventStatusScheduler) Tick(ctx context.Context) (SchedulerTickResult, error) {
	var result SchedulerTickResult
	now := s.now()

	events, err := s.repo.ListByStatuses(ctx, models.SchedulableEventStatuses)
	s.metrics.ObserveDBQuery("list_schedulable_events", s.now().Sub(now))
	if err != nil {
		s.metrics.RecordSchedulerTick(true, now)
		return result, fmt.Errorf("load schedulable events: %w", err)
	}

	for _, event := range events {
		result.Evaluated++
		next := EvaluateEventStatus(event, now)
		if next == event.Status {
			continue
		}
		changed, err := s.repo.UpdateStatus(ctx, event.ID, event.Status, next)
		if err != nil {
			result.Failed++
			s.logger.Warn("failed to persist event status",
				zap.String("event_id", event.ID),
				zap.String("from", string(event.Status)),
				zap.String("to", string(next)),
				zap.Error(err),
			)
			continue
		}
		if !changed {
			result.Skipped++
			s.logger.Debug("event status changed concurrently, skipping", zap.String("event_id", event.ID))
			continue
		}
		result.Changed++
		s.metrics.RecordStatusTransition(event.Status, next)
		s.logger.Info("event status advanced",
			zap.String("event_id", event.ID),
			zap.String("from", string(event.Status)),
			zap.String("to", string(next)),
		)
	}

	s.metrics.RecordSchedulerTick(false, now)
	return result, nil
}
