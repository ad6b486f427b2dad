package logger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.Logger
	once sync.Once
	atom zap.AtomicLevel
)

var buildLogger = func(cfg zap.Config) (*zap.Logger, error) {
	return cfg.Build(zap.AddCallerSkip(1))
}

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserEmailKey ContextKey = "user_email"
)

// Init initializes the logger. Development mode switches to the console
// encoder with colored levels; everything else logs JSON.
func Init(env string) {
	once.Do(func() {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		if env == "development" {
			config = zap.NewDevelopmentConfig()
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		var err error
		log, err = buildLogger(config)
		if err != nil {
			panic(err)
		}
		atom = config.Level
	})
}

// GetLogger returns the underlying zap logger
func GetLogger() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// SetLevel changes the minimum enabled level at runtime.
func SetLevel(level zapcore.Level) {
	if log != nil {
		atom.SetLevel(level)
	}
}

// Sync flushes buffered entries.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

// WithContext adds request scoped fields (request_id, user_email) to the logger
func WithContext(ctx context.Context) *zap.Logger {
	base := GetLogger()
	if ctx == nil {
		return base
	}

	var fields []zap.Field
	// gin stores keys as plain strings, typed keys come from context.WithValue in our own code
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok && reqID != "" {
		fields = append(fields, zap.String("request_id", reqID))
	} else if reqID, ok := ctx.Value(string(RequestIDKey)).(string); ok && reqID != "" {
		fields = append(fields, zap.String("request_id", reqID))
	}
	if email, ok := ctx.Value(UserEmailKey).(string); ok && email != "" {
		fields = append(fields, zap.String("user_email", email))
	}

	if len(fields) > 0 {
		return base.With(fields...)
	}
	return base
}

// Info logs a message at InfoLevel
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Debug(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

// LogRequest logs an HTTP request details
func LogRequest(ctx context.Context, method, path string, status int, latency time.Duration, clientIP string) {
	WithContext(ctx).Info("HTTP Request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("latency", latency),
		zap.String("client_ip", clientIP),
	)
}
