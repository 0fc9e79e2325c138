package http

import (
	"net/http"

	"postauto/internal/entity"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP statuses. Anything unclassified
// is a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case entity.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case entity.IsInvalidTransition(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case entity.IsLimitExceeded(err):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case entity.IsNotConfigured(err):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
