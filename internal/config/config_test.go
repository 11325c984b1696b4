package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "auth")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "auth_db")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("OTP_EXPIRY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBPort != "5432" {
		t.Errorf("DBPort = %q, want 5432", cfg.DBPort)
	}
	if cfg.OTPExpiry != 10*time.Minute {
		t.Errorf("OTPExpiry = %v, want 10m", cfg.OTPExpiry)
	}
	if cfg.JWTAccessExpiry != 15*time.Minute {
		t.Errorf("JWTAccessExpiry = %v, want 15m", cfg.JWTAccessExpiry)
	}
	if cfg.MailQueueSize != 256 {
		t.Errorf("MailQueueSize = %d, want 256", cfg.MailQueueSize)
	}
}

func TestLoad_MissingRequiredVariablesListedTogether(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail with missing variables")
	}
	for _, name := range []string{"DB_HOST", "JWT_SECRET"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should name %s: %v", name, err)
		}
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OTP_EXPIRY", "5m")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OTPExpiry != 5*time.Minute {
		t.Errorf("OTPExpiry = %v, want 5m", cfg.OTPExpiry)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://app.example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestParseDuration_InvalidFallsBack(t *testing.T) {
	if got := parseDuration("not-a-duration", time.Minute); got != time.Minute {
		t.Errorf("parseDuration() = %v, want fallback", got)
	}
}
