package utils

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger is the small logging surface handlers and middleware depend on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *SlogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *SlogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

const contextLoggerKey = "logger"

// ContextLogger attaches the request-scoped logger to the gin context so
// handlers can log with the request id attached.
func ContextLogger(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextLoggerKey, logger)
		c.Next()
	}
}

// FromContext returns the request-scoped logger, falling back to fallback.
func FromContext(c *gin.Context, fallback Logger) Logger {
	if value, exists := c.Get(contextLoggerKey); exists {
		if logger, ok := value.(Logger); ok {
			return logger
		}
	}
	return fallback
}

// LoggerMiddleware logs one line per request.
func LoggerMiddleware(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		)
	}
}
