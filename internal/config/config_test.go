package config

import (
	"testing"
	"time"
)

func TestParseTTL(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"15m", 15 * time.Minute},
		{"1h", time.Hour},
		{"14d", 14 * 24 * time.Hour},
		{"1d", 24 * time.Hour},
		{"90s", 90 * time.Second},
	}
	for _, tt := range tests {
		got, err := ParseTTL(tt.input)
		if err != nil {
			t.Fatalf("ParseTTL(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("ParseTTL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseTTLInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "xd", "1w"} {
		if _, err := ParseTTL(input); err == nil {
			t.Fatalf("ParseTTL(%q) expected error", input)
		}
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"false", true, false},
		{"0", true, false},
		{"", false, false},
		{"", true, true},
		{"yes", false, false}, // unparseable keeps the fallback
		{"yes", true, true},
	}
	for _, tt := range tests {
		t.Setenv("PORTAL_TEST_BOOL", tt.value)
		if got := getEnvBool("PORTAL_TEST_BOOL", tt.fallback); got != tt.want {
			t.Fatalf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.fallback, got, tt.want)
		}
	}
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/portal")
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	t.Setenv("REFRESH_TOKEN_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected missing token secrets to fail")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/portal")
	t.Setenv("ACCESS_TOKEN_SECRET", "a")
	t.Setenv("REFRESH_TOKEN_SECRET", "r")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("unexpected access TTL %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != 14*24*time.Hour {
		t.Fatalf("unexpected refresh TTL %v", cfg.Auth.RefreshTokenTTL)
	}
	if cfg.Auth.MaxRefreshSessions != 5 {
		t.Fatalf("unexpected session cap %d", cfg.Auth.MaxRefreshSessions)
	}
	if cfg.Auth.CookieName != "collegehub_rt" {
		t.Fatalf("unexpected cookie name %q", cfg.Auth.CookieName)
	}
}
