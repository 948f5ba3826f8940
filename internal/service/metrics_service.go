package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/event-attendance-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the API, the
// status scheduler and finalization.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	schedulerTicks        *prometheus.CounterVec
	statusTransitions     *prometheus.CounterVec
	finalizations         *prometheus.CounterVec
	finalizationDuration  prometheus.Histogram
	attendanceVerdicts    *prometheus.CounterVec
	locationConflicts     prometheus.Counter
	dbQueryDuration       *prometheus.HistogramVec
	lastSchedulerTickUnix prometheus.Gauge
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	schedulerTicks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "event_scheduler_ticks_total",
		Help: "Status scheduler ticks by result",
	}, []string{"result"})

	statusTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "event_status_transitions_total",
		Help: "Persisted event status changes",
	}, []string{"from", "to"})

	finalizations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "event_finalizations_total",
		Help: "Finalization attempts by outcome",
	}, []string{"outcome"})

	finalizationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "event_finalization_duration_seconds",
		Help:    "Time spent finalizing an event",
		Buckets: prometheus.DefBuckets,
	})

	attendanceVerdicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_verdicts_total",
		Help: "Attendance records written by finalization, by status",
	}, []string{"status"})

	locationConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "event_location_conflicts_total",
		Help: "Event writes rejected because of location conflicts",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	lastTick := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "event_scheduler_last_tick_timestamp_seconds",
		Help: "Unix time of the last completed scheduler tick",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, schedulerTicks, statusTransitions, finalizations,
		finalizationDuration, attendanceVerdicts, locationConflicts, dbQueryDuration, lastTick, goroutines)

	return &MetricsService{
		registry:              registry,
		handler:               promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:       requestDuration,
		requestTotal:          requestTotal,
		schedulerTicks:        schedulerTicks,
		statusTransitions:     statusTransitions,
		finalizations:         finalizations,
		finalizationDuration:  finalizationDuration,
		attendanceVerdicts:    attendanceVerdicts,
		locationConflicts:     locationConflicts,
		dbQueryDuration:       dbQueryDuration,
		lastSchedulerTickUnix: lastTick,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordSchedulerTick counts a tick; failed ticks do not move the last-tick gauge.
func (m *MetricsService) RecordSchedulerTick(failed bool, at time.Time) {
	if m == nil {
		return
	}
	if failed {
		m.schedulerTicks.WithLabelValues("failed").Inc()
		return
	}
	m.schedulerTicks.WithLabelValues("ok").Inc()
	m.lastSchedulerTickUnix.Set(float64(at.Unix()))
}

// RecordStatusTransition counts a persisted status change.
func (m *MetricsService) RecordStatusTransition(from, to models.EventStatus) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(string(from), string(to)).Inc()
}

// RecordFinalization records a finalization attempt and, on success, its verdicts.
func (m *MetricsService) RecordFinalization(outcome string, duration time.Duration, verdicts map[models.AttendanceStatus]int) {
	if m == nil {
		return
	}
	m.finalizations.WithLabelValues(outcome).Inc()
	m.finalizationDuration.Observe(duration.Seconds())
	for status, count := range verdicts {
		m.attendanceVerdicts.WithLabelValues(string(status)).Add(float64(count))
	}
}

// RecordLocationConflict counts an event write rejected for a location conflict.
func (m *MetricsService) RecordLocationConflict() {
	if m == nil {
		return
	}
	m.locationConflicts.Inc()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}
