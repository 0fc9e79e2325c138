package http

import (
	"net/http"
	"strconv"

	"postauto/internal/entity"
	"postauto/internal/usecase"
	"postauto/pkg/logger"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	pipeline usecase.PipelineUseCase
	logger   *logger.Logger
}

func NewPostHandler(pipeline usecase.PipelineUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

type CreatePostRequest struct {
	Subject string `json:"subject" binding:"required"`
}

// CreatePost submits a new subject to the pipeline, same as a Telegram
// "Subject:" message.
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.pipeline.CreatePost(c.Request.Context(), req.Subject, "")
	if err != nil {
		h.logger.Error("Failed to create post: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.pipeline.GetPost(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListPosts returns recent posts, optionally filtered by ?status=.
func (h *PostHandler) ListPosts(c *gin.Context) {
	if status := c.Query("status"); status != "" {
		if !entity.PostStatus(status).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + status})
			return
		}
		posts, err := h.pipeline.ListByStatus(entity.PostStatus(status))
		if err != nil {
			h.logger.Error("Failed to list posts by status: %v", err)
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
		return
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	posts, err := h.pipeline.ListPosts(limit)
	if err != nil {
		h.logger.Error("Failed to list posts: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

func (h *PostHandler) ApprovePost(c *gin.Context) {
	post, err := h.pipeline.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

type AdjustPostRequest struct {
	Note string `json:"note" binding:"required"`
}

func (h *PostHandler) AdjustPost(c *gin.Context) {
	var req AdjustPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.pipeline.Adjust(c.Request.Context(), c.Param("id"), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) CancelPost(c *gin.Context) {
	post, err := h.pipeline.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}
