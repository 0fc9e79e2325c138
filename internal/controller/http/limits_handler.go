package http

import (
	"net/http"

	"postauto/internal/entity"
	"postauto/internal/usecase"
	"postauto/pkg/logger"

	"github.com/gin-gonic/gin"
)

type LimitsHandler struct {
	limits usecase.LimitsUseCase
	logger *logger.Logger
}

func NewLimitsHandler(limits usecase.LimitsUseCase, logger *logger.Logger) *LimitsHandler {
	return &LimitsHandler{
		limits: limits,
		logger: logger,
	}
}

func (h *LimitsHandler) GetLimits(c *gin.Context) {
	limits, err := h.limits.GetLimits()
	if err != nil {
		h.logger.Error("Failed to load limits: %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, limits)
}

// UpdateLimits applies a partial update; omitted fields keep their values.
func (h *LimitsHandler) UpdateLimits(c *gin.Context) {
	var req entity.LimitsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limits, err := h.limits.UpdateLimits(req)
	if err != nil {
		h.logger.Error("Failed to update limits: %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, limits)
}

func (h *LimitsHandler) GetUsage(c *gin.Context) {
	stats, err := h.limits.GetUsageStats()
	if err != nil {
		h.logger.Error("Failed to load usage stats: %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
