package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-attendance-api/internal/dto"
	"github.com/noah-isme/event-attendance-api/internal/models"
)

type geofenceServiceMock struct {
	lastID  string
	lastReq dto.GeofenceCheckRequest
	resp    *dto.GeofenceCheckResponse
	err     error
}

func (m *geofenceServiceMock) Check(ctx context.Context, locationID string, req dto.GeofenceCheckRequest) (*dto.GeofenceCheckResponse, error) {
	m.lastID = locationID
	m.lastReq = req
	return m.resp, m.err
}

func TestGeofenceHandlerCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &geofenceServiceMock{resp: &dto.GeofenceCheckResponse{LocationID: "loc-1", Shape: models.GeofenceShapeCircle, Inside: true}}
	handler := NewGeofenceHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "loc-1"}}
	c.Request = httptest.NewRequest(http.MethodPost, "/locations/loc-1/geofence-check", bytes.NewBufferString(`{"latitude":14.6,"longitude":121.0}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Check(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "loc-1", mockSvc.lastID)
	require.NotNil(t, mockSvc.lastReq.Latitude)
	assert.Equal(t, 14.6, *mockSvc.lastReq.Latitude)

	var env struct {
		Data dto.GeofenceCheckResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Data.Inside)
}

func TestGeofenceHandlerInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &geofenceServiceMock{}
	handler := NewGeofenceHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/locations/loc-1/geofence-check", bytes.NewBufferString(`{"latitude":"north"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Check(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mockSvc.lastID)
}
