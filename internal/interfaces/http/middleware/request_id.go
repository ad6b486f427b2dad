package middleware

import (
	"context"

	"blood-donate.backend/pkg/logger"
	"blood-donate.backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// RequestIDMiddleware reuses a sane inbound X-Request-ID or issues a time-ordered one
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = utils.NewID()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
