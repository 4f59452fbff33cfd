package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/metrics"
)

// MetricsMiddleware tracks HTTP metrics for all requests
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		path := c.FullPath()
		method := c.Request.Method

		metrics.ActiveRequests.WithLabelValues(path).Inc()
		defer metrics.ActiveRequests.WithLabelValues(path).Dec()

		c.Next()

		duration := time.Since(startTime).Seconds()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
