package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/event-attendance-api/internal/dto"
	"github.com/noah-isme/event-attendance-api/internal/models"
	"github.com/noah-isme/event-attendance-api/internal/service"
	appErrors "github.com/noah-isme/event-attendance-api/pkg/errors"
	"github.com/noah-isme/event-attendance-api/pkg/response"
)

type eventService interface {
	Get(ctx context.Context, id string) (*models.Event, error)
	Status(ctx context.Context, id string) (*dto.EventStatusResponse, error)
	Create(ctx context.Context, req dto.EventRequest) (*models.Event, error)
	Update(ctx context.Context, id string, req dto.EventRequest) (*models.Event, error)
	Cancel(ctx context.Context, id string) (*models.Event, error)
}

type finalizationService interface {
	Finalize(ctx context.Context, eventID string) (*models.FinalizationSummary, error)
}

type attendanceExporter interface {
	Export(ctx context.Context, eventID string, format service.ExportFormat) (*service.AttendanceExport, error)
}

// EventHandler exposes the administrative event endpoints.
type EventHandler struct {
	events    eventService
	finalizer finalizationService
	exporter  attendanceExporter
}

// NewEventHandler builds a new handler.
func NewEventHandler(events eventService, finalizer finalizationService, exporter attendanceExporter) *EventHandler {
	return &EventHandler{events: events, finalizer: finalizer, exporter: exporter}
}

// Create godoc
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.EventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.events.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Get godoc
// @Summary Get an event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, event)
}

// Update godoc
// @Summary Update an event that has not started
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.EventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.events.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, event)
}

// Cancel godoc
// @Summary Cancel an event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id}/cancel [post]
func (h *EventHandler) Cancel(c *gin.Context) {
	event, err := h.events.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, event)
}

// Status godoc
// @Summary Stored and time-derived status of an event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id}/status [get]
func (h *EventHandler) Status(c *gin.Context) {
	status, err := h.events.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}

// Finalize godoc
// @Summary Finalize attendance for a concluded event
// @Tags Attendance
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /events/{id}/finalize [post]
func (h *EventHandler) Finalize(c *gin.Context) {
	summary, err := h.finalizer.Finalize(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// Export godoc
// @Summary Download the attendance sheet of a finalized event
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Event ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /events/{id}/attendance/export [get]
func (h *EventHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	file, err := h.exporter.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
