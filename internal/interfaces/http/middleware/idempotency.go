package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"blood-donate.backend/pkg/logger"
	"blood-donate.backend/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

type cachedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// IdempotencyMiddleware replays the first successful response for a repeated
// Idempotency-Key from the same caller. Requests without the header pass through.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		email, _ := GetUserEmail(c)
		storageKey := fmt.Sprintf("idempotency:%s:%s:%s", email, c.FullPath(), key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil && val == processingMarker:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "IDEMPOTENCY_CONFLICT",
				"message": "Request already in progress",
			})
			return
		case err == nil:
			var cached cachedResponse
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil && cached.Status != 0 {
				c.Header("X-Idempotency-Hit", "true")
				c.Data(cached.Status, "application/json; charset=utf-8", []byte(cached.Body))
				c.Abort()
				return
			}
		case !redis.IsNil(err):
			// Redis unavailable: serve without replay protection.
			logger.Warn(ctx, "Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil {
			logger.Warn(ctx, "Idempotency lock failed", zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "IDEMPOTENCY_CONFLICT",
				"message": "Request already in progress",
			})
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			payload, _ := json.Marshal(cachedResponse{Status: status, Body: w.body.String()})
			_ = redisSet(ctx, storageKey, string(payload), RetentionDuration)
			return
		}
		// Remove key so retry is possible
		_ = redisDel(ctx, storageKey)
	}
}
