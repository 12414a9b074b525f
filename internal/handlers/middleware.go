package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/collegehub-edu/portal-service/internal/cache"
	"github.com/collegehub-edu/portal-service/internal/utils"
)

// SetupMiddleware sets up common middleware for the Gin router.
func SetupMiddleware(router *gin.Engine, logger utils.Logger, allowedOrigins []string) {
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(allowedOrigins))
	router.Use(gin.Recovery())
	router.Use(utils.ContextLogger(logger))
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(SecurityMiddleware())
}

// RequestIDMiddleware generates a unique request ID for each request.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// CORSMiddleware allows credentialed requests from the configured origins.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SecurityMiddleware adds security headers.
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// RateLimitMiddleware applies a per-client fixed window. Limiter errors are
// logged and the request allowed through.
func RateLimitMiddleware(limiter *cache.RateLimiter, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "auth:" + clientKey(c)
		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable", "error", err)
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Success: false,
				Message: "Too many auth attempts. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

func clientKey(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return c.ClientIP()
}
