package session

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config defines all runtime configuration for the session subsystem.
//
// It controls access-token TTL, refresh-secret TTL, clock skew tolerance,
// refresh entropy size, and the JWT signing secret.
//
// This struct is intentionally explicit and environment-driven so that
// production deployments can tune security parameters without code changes.
type Config struct {
	// AccessTokenTTL defines the lifetime of JWT access tokens.
	AccessTokenTTL time.Duration

	// RefreshTokenTTL defines the lifetime of refresh secrets (and so of
	// idle sessions).
	RefreshTokenTTL time.Duration

	// ClockSkew defines the allowed time skew during token validation.
	ClockSkew time.Duration

	// RefreshTokenBytes defines the number of random bytes used
	// to generate opaque refresh secrets.
	RefreshTokenBytes int

	// JWTSecret is the HMAC secret used to sign HS256 access tokens.
	// Minimum 32 bytes.
	JWTSecret string
}

// DefaultConfig returns a secure default configuration suitable for development.
//
// Production environments should override values via environment variables.
func DefaultConfig() Config {
	return Config{
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   30 * 24 * time.Hour,
		ClockSkew:         30 * time.Second,
		RefreshTokenBytes: 32,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - GRAVITY_JWT_SECRET (min 32 bytes)
//
// Optional (durations must be valid Go duration strings):
//   - GRAVITY_AUTH_ACCESS_TTL
//   - GRAVITY_AUTH_REFRESH_TTL
//   - GRAVITY_AUTH_CLOCK_SKEW
//   - GRAVITY_AUTH_REFRESH_TOKEN_BYTES
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("GRAVITY_AUTH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTokenTTL = d
	}

	if v := os.Getenv("GRAVITY_AUTH_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTokenTTL = d
	}

	if v := os.Getenv("GRAVITY_AUTH_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ClockSkew = d
	}

	if v := os.Getenv("GRAVITY_AUTH_REFRESH_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 32 || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTokenBytes = n
	}

	cfg.JWTSecret = strings.TrimSpace(os.Getenv("GRAVITY_JWT_SECRET"))
	if len(cfg.JWTSecret) < 32 {
		return Config{}, ErrConfig
	}

	// Invariant: refresh secrets must outlive the access tokens they renew.
	if cfg.RefreshTokenTTL <= cfg.AccessTokenTTL {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
