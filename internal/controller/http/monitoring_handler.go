package http

import (
	"net/http"
	"strconv"

	"postauto/internal/entity"
	"postauto/internal/usecase"
	"postauto/pkg/logger"

	"github.com/gin-gonic/gin"
)

type MonitoringHandler struct {
	monitoring usecase.MonitoringUseCase
	logger     *logger.Logger
}

func NewMonitoringHandler(monitoring usecase.MonitoringUseCase, logger *logger.Logger) *MonitoringHandler {
	return &MonitoringHandler{
		monitoring: monitoring,
		logger:     logger,
	}
}

// GetStatus returns the dashboard snapshot: usage, queue depth and post
// counts per status.
func (h *MonitoringHandler) GetStatus(c *gin.Context) {
	status, err := h.monitoring.Status()
	if err != nil {
		h.logger.Error("Failed to build status snapshot: %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetLogs returns recent log entries, optionally filtered by ?level=.
func (h *MonitoringHandler) GetLogs(c *gin.Context) {
	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	entries, err := h.monitoring.RecentLogs(entity.LogLevel(c.Query("level")), limit)
	if err != nil {
		h.logger.Error("Failed to list logs: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": entries, "count": len(entries)})
}
