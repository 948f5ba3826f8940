package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/event-attendance-api/internal/dto"
	appErrors "github.com/noah-isme/event-attendance-api/pkg/errors"
	"github.com/noah-isme/event-attendance-api/pkg/response"
)

type geofenceService interface {
	Check(ctx context.Context, locationID string, req dto.GeofenceCheckRequest) (*dto.GeofenceCheckResponse, error)
}

// GeofenceHandler serves the check-in gate's containment test.
type GeofenceHandler struct {
	service geofenceService
}

// NewGeofenceHandler builds a new handler.
func NewGeofenceHandler(service geofenceService) *GeofenceHandler {
	return &GeofenceHandler{service: service}
}

// Check godoc
// @Summary Check whether a coordinate is inside a location
// @Tags Locations
// @Accept json
// @Produce json
// @Param id path string true "Location ID"
// @Param payload body dto.GeofenceCheckRequest true "Coordinate"
// @Success 200 {object} response.Envelope
// @Router /locations/{id}/geofence-check [post]
func (h *GeofenceHandler) Check(c *gin.Context) {
	var req dto.GeofenceCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid coordinate payload"))
		return
	}
	result, err := h.service.Check(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
