package middleware

import (
	"time"

	"blood-donate.backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// LoggerMiddleware logs HTTP requests using the structured logger
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		// request id and caller email are read from c.Request.Context()
		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}
