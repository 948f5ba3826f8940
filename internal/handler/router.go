package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Events   *EventHandler
	Geofence *GeofenceHandler
	Metrics  *MetricsHandler
}

// RegisterRoutes mounts the API under prefix and the probes at the root.
func RegisterRoutes(r gin.IRouter, prefix string, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)

	events := api.Group("/events")
	events.POST("", h.Events.Create)
	events.GET("/:id", h.Events.Get)
	events.PUT("/:id", h.Events.Update)
	events.GET("/:id/status", h.Events.Status)
	events.POST("/:id/cancel", h.Events.Cancel)
	events.POST("/:id/finalize", h.Events.Finalize)
	events.GET("/:id/attendance/export", h.Events.Export)

	api.POST("/locations/:id/geofence-check", h.Geofence.Check)
}
