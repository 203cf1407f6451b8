package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kinfolkhq/kinfolk-server/internal/apperr"
	"github.com/kinfolkhq/kinfolk-server/internal/model"
)

// handleError writes the JSON error envelope: a human-readable message plus
// a stable machine-readable code the client maps to an affordance.
func handleError(c *gin.Context, err error) {
	if apiErr, ok := apperr.FromError(err); ok {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{
			"error": apiErr.Message,
			"code":  apiErr.Code,
		})
		return
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error": "Not found",
			"code":  "NOT_FOUND",
		})
	case errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenRevoked),
		errors.Is(err, model.ErrTokenMismatch):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid session",
			"code":  "NOT_AUTHENTICATED",
		})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
			"code":  "AUTH_API_ERROR",
		})
	}
}
