package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/metrics"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
)

// RecoveryMiddleware creates a new recovery middleware that collects panic metrics
func RecoveryMiddleware(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				endpoint := c.FullPath()
				if endpoint == "" {
					endpoint = c.Request.URL.Path
				}

				metrics.PanicRecoveriesTotal.WithLabelValues(endpoint).Inc()
				logger.Errorf("Panic recovered: %v\nStack trace: %s", err, debug.Stack())

				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()

		c.Next()
	}
}
