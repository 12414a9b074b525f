package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and injected into constructors.
// Business logic never reads the environment directly.
type Config struct {
	Environment string
	Port        string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	// Kafka brokers for the email dispatcher. Empty means the in-process
	// gochannel bus is used instead.
	KafkaBrokers []string

	Auth AuthConfig
	SMTP SMTPConfig

	CORSAllowedOrigins []string
}

// AuthConfig holds everything the token service and session manager need.
type AuthConfig struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	CookieName     string
	CookieSecure   bool
	CookieSameSite string

	MaxRefreshSessions int

	// Fixed-window limit applied to /auth routes.
	RateLimitWindow   time.Duration
	RateLimitRequests int
}

// SMTPConfig configures the bulk mail worker.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	MaxRetries    int
	BaseBackoff   time.Duration
	BatchSize     int
	WorkerCount   int
	DispatchTopic string
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		Port:               getEnv("PORT", "8080"),
		LogLevel:           parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		KafkaBrokers:       parseCSV(os.Getenv("KAFKA_BROKERS")),
		CORSAllowedOrigins: parseCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		Auth: AuthConfig{
			AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
			RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
			CookieName:         getEnv("COOKIE_NAME", "collegehub_rt"),
			CookieSameSite:     parseSameSite(os.Getenv("COOKIE_SAME_SITE")),
			MaxRefreshSessions: getEnvInt("MAX_REFRESH_SESSIONS_PER_USER", 5),
			RateLimitWindow:    15 * time.Minute,
			RateLimitRequests:  getEnvInt("AUTH_RATE_LIMIT", 20),
		},
		SMTP: SMTPConfig{
			Host:          getEnv("SMTP_HOST", "localhost"),
			Port:          getEnvInt("SMTP_PORT", 587),
			Username:      os.Getenv("SMTP_USERNAME"),
			Password:      os.Getenv("SMTP_PASSWORD"),
			From:          os.Getenv("EMAIL_FROM"),
			MaxRetries:    getEnvInt("EMAIL_MAX_RETRIES", 3),
			BaseBackoff:   time.Duration(getEnvInt("EMAIL_BASE_BACKOFF_MS", 500)) * time.Millisecond,
			BatchSize:     getEnvInt("EMAIL_BATCH_SIZE", 50),
			WorkerCount:   getEnvInt("EMAIL_WORKER_COUNT", 4),
			DispatchTopic: getEnv("EMAIL_DISPATCH_TOPIC", "email.dispatch"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing required environment variable: DATABASE_URL")
	}
	if cfg.Auth.AccessTokenSecret == "" {
		return nil, fmt.Errorf("missing required environment variable: ACCESS_TOKEN_SECRET")
	}
	if cfg.Auth.RefreshTokenSecret == "" {
		return nil, fmt.Errorf("missing required environment variable: REFRESH_TOKEN_SECRET")
	}

	var err error
	cfg.Auth.AccessTokenTTL, err = ParseTTL(getEnv("ACCESS_TOKEN_EXPIRES_IN", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_EXPIRES_IN: %w", err)
	}
	cfg.Auth.RefreshTokenTTL, err = ParseTTL(getEnv("REFRESH_TOKEN_EXPIRES_IN", "14d"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TOKEN_EXPIRES_IN: %w", err)
	}

	cfg.Auth.CookieSecure = getEnvBool("COOKIE_SECURE", cfg.Environment == "production")

	return cfg, nil
}

// ParseTTL parses duration strings, extending time.ParseDuration with a
// "d" suffix for days ("14d").
func ParseTTL(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.HasSuffix(value, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(value, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q", value)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(value)
}

func parseLogLevel(value string) slog.Level {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseSameSite(value string) string {
	switch strings.ToLower(value) {
	case "strict", "none", "lax":
		return strings.ToLower(value)
	default:
		return "lax"
	}
}

func parseCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
