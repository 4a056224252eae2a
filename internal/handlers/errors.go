package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskfan/internal/services"
)

// handleMutationError maps the orchestrator's error taxonomy onto HTTP status
// classes. Forbidden responses carry the engine's reason code so clients can
// branch on, say, reporter-terminal-status-forbidden versus a plain denial.
func handleMutationError(c *gin.Context, err error) {
	var mutErr *services.MutationError
	if !errors.As(err, &mutErr) {
		log.Printf("unclassified error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
		return
	}

	switch mutErr.Kind {
	case services.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": mutErr.Message,
		})
	case services.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"reason":  string(mutErr.Reason),
			"message": mutErr.Message,
		})
	case services.KindConflict:
		c.JSON(http.StatusConflict, gin.H{
			"error":   "conflict",
			"message": mutErr.Message,
		})
	case services.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": mutErr.Message,
		})
	default:
		log.Printf("unexpected failure on %s %s: %v", c.Request.Method, c.Request.URL.Path, mutErr)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}
}
