package session

import (
	"testing"
	"time"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef" // 32 bytes

func TestLoadConfigFromEnv_MissingJWTSecret(t *testing.T) {
	t.Setenv("GRAVITY_JWT_SECRET", "")
	_, err := LoadConfigFromEnv()
	if err != ErrConfig {
		t.Fatalf("expected ErrConfig on missing secret, got %v", err)
	}
}

func TestLoadConfigFromEnv_ShortJWTSecret(t *testing.T) {
	t.Setenv("GRAVITY_JWT_SECRET", "too-short")
	_, err := LoadConfigFromEnv()
	if err != ErrConfig {
		t.Fatalf("expected ErrConfig on short secret, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidDurations(t *testing.T) {
	t.Setenv("GRAVITY_JWT_SECRET", testJWTSecret)
	t.Setenv("GRAVITY_AUTH_ACCESS_TTL", "-5m")
	_, err := LoadConfigFromEnv()
	if err != ErrConfig {
		t.Fatalf("expected ErrConfig for negative duration, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidRefreshTokenBytes(t *testing.T) {
	t.Setenv("GRAVITY_JWT_SECRET", testJWTSecret)
	t.Setenv("GRAVITY_AUTH_REFRESH_TOKEN_BYTES", "16")
	_, err := LoadConfigFromEnv()
	if err != ErrConfig {
		t.Fatalf("expected ErrConfig for small refresh bytes, got %v", err)
	}
}

func TestLoadConfigFromEnv_RefreshMustOutliveAccess(t *testing.T) {
	t.Setenv("GRAVITY_JWT_SECRET", testJWTSecret)
	t.Setenv("GRAVITY_AUTH_ACCESS_TTL", "48h")
	t.Setenv("GRAVITY_AUTH_REFRESH_TTL", "24h")
	_, err := LoadConfigFromEnv()
	if err != ErrConfig {
		t.Fatalf("expected ErrConfig for ttl order, got %v", err)
	}
}

func TestLoadConfigFromEnv_Valid(t *testing.T) {
	t.Setenv("GRAVITY_JWT_SECRET", testJWTSecret)
	t.Setenv("GRAVITY_AUTH_ACCESS_TTL", "10m")
	t.Setenv("GRAVITY_AUTH_REFRESH_TTL", "168h")
	t.Setenv("GRAVITY_AUTH_CLOCK_SKEW", "20s")
	t.Setenv("GRAVITY_AUTH_REFRESH_TOKEN_BYTES", "48")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AccessTokenTTL != 10*time.Minute {
		t.Fatalf("access ttl mismatch: %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 168*time.Hour {
		t.Fatalf("refresh ttl mismatch: %v", cfg.RefreshTokenTTL)
	}
	if cfg.ClockSkew != 20*time.Second {
		t.Fatalf("clock skew mismatch: %v", cfg.ClockSkew)
	}
	if cfg.RefreshTokenBytes != 48 {
		t.Fatalf("refresh token bytes mismatch: %d", cfg.RefreshTokenBytes)
	}
	if cfg.JWTSecret != testJWTSecret {
		t.Fatalf("jwt secret mismatch")
	}
}
