package http

import (
	"net/http"

	"postauto/internal/usecase"
	"postauto/pkg/logger"

	"github.com/gin-gonic/gin"
)

type PromptsHandler struct {
	prompts usecase.PromptsUseCase
	logger  *logger.Logger
}

func NewPromptsHandler(prompts usecase.PromptsUseCase, logger *logger.Logger) *PromptsHandler {
	return &PromptsHandler{
		prompts: prompts,
		logger:  logger,
	}
}

func (h *PromptsHandler) ListPrompts(c *gin.Context) {
	prompts, err := h.prompts.GetAll()
	if err != nil {
		h.logger.Error("Failed to list prompts: %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompts": prompts, "count": len(prompts)})
}

func (h *PromptsHandler) GetActivePrompt(c *gin.Context) {
	prompt, err := h.prompts.GetActive()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prompt)
}

type CreatePromptRequest struct {
	BasePrompt     string `json:"base_prompt" binding:"required"`
	EditorialRules string `json:"editorial_rules"`
}

// CreatePrompt stores a new template version and makes it active.
func (h *PromptsHandler) CreatePrompt(c *gin.Context) {
	var req CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompt, err := h.prompts.Create(req.BasePrompt, req.EditorialRules)
	if err != nil {
		h.logger.Error("Failed to create prompt: %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, prompt)
}

type UpdatePromptRequest struct {
	BasePrompt     string `json:"base_prompt"`
	EditorialRules string `json:"editorial_rules"`
}

// UpdatePrompt writes a new version seeded from an existing one.
func (h *PromptsHandler) UpdatePrompt(c *gin.Context) {
	var req UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompt, err := h.prompts.Update(c.Param("id"), req.BasePrompt, req.EditorialRules)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prompt)
}

func (h *PromptsHandler) ActivatePrompt(c *gin.Context) {
	prompt, err := h.prompts.Activate(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prompt)
}
