package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classboard/classboard-api/internal/service"
)

// MetricsHandler exposes the observability endpoints: Prometheus scrape,
// liveness and a readiness check backed by a store probe.
type MetricsHandler struct {
	metrics *service.MetricsService
	probe   func(ctx context.Context) error
}

// NewMetricsHandler constructs a metrics handler. probe reports whether the
// backing store is reachable; nil means readiness equals liveness.
func NewMetricsHandler(metrics *service.MetricsService, probe func(ctx context.Context) error) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, probe: probe}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health reports process liveness.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "classboard-api"})
}

// Ready reports whether the server can answer real traffic.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.probe != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.probe(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
