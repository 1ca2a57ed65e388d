package core

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// MetricsHandler serves the admin observability endpoints.
type MetricsHandler struct {
	metrics   *MetricsService
	counter   StatusCounter
	startedAt time.Time
}

func NewMetricsHandler(metrics *MetricsService, counter StatusCounter, startedAt time.Time) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, counter: counter, startedAt: startedAt}
}

func (h *MetricsHandler) Overview(c *gin.Context) {
	queue, workers, err := h.metrics.Overview(c.Request.Context())
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": queue, "workers": workers})
}

func (h *MetricsHandler) Queues(c *gin.Context) {
	queue, err := h.metrics.Queue(c.Request.Context())
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusOK, queue)
}

func (h *MetricsHandler) Workers(c *gin.Context) {
	workers, err := h.metrics.Workers(c.Request.Context())
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": workers})
}

func (h *MetricsHandler) Worker(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	hb, err := h.metrics.WorkerByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, opResource, err)
		return
	}
	c.JSON(http.StatusOK, hb)
}

func (h *MetricsHandler) SystemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, CollectSystemStatus(c.Request.Context(), h.metrics, h.counter, h.startedAt))
}
