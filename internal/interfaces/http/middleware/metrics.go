package middleware

import (
	"time"

	"blood-donate.backend/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request counts and latency by matched route
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.RecordHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
