package api

import (
	"net/http"
	"time"

	"marketpulse/internal/common/errors"
	"marketpulse/internal/common/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	httpLog := log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		httpLog.Debug("request served", map[string]interface{}{
			"requestId": c.GetString("requestId"),
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"status":    c.Writer.Status(),
			"duration":  time.Since(start).String(),
		})
	}
}

// recovery turns a handler panic into the standard JSON error and reports it
// through the error handler.
func recovery(h *errors.ErrorHandler) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		h.HandleError(c.Request.Context(), recovered, "http")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errors.FallbackMessage})
	})
}
