package middleware

import (
	"time"

	"devenv-keeper/services"

	"github.com/gin-gonic/gin"
)

/**
 * HTTP request statistics middleware
 * @description
 * - Counts requests per route and records their duration
 * - Responses with status >= 400 are counted as errors
 * - Feeds the counters reported by /healthz
 */
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		// route template, so /api/v1/health/projects/:name is one series
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		services.IncrementRequestCount(path)
		services.RecordRequestDuration(path, duration)
		if c.Writer.Status() >= 400 {
			services.IncrementErrorCount(path)
		}
	}
}
