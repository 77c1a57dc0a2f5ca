// Package token centralizes server-side hashing of opaque secrets
// (refresh credentials). Handlers and stores must never persist a raw
// secret; they call into this package and store the digest only.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
)

const (
	// HMACEnvKey is the env var name for the secret-hashing HMAC key.
	// #nosec G101 -- not a credential; it's an environment variable name.
	HMACEnvKey = "GRAVITY_TOKEN_HMAC_KEY"
)

// HashSHA256Hex returns a SHA-256 hex digest of s (64 chars).
func HashSHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashHMACSHA256Hex returns an HMAC-SHA256 hex digest of s using key.
func HashHMACSHA256Hex(s string, key []byte) string {
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(s))
	return hex.EncodeToString(m.Sum(nil))
}

// HMACKeyFromEnv returns the configured HMAC key bytes (trimmed), enforcing a
// minimum byte length.
// If the env var is missing/blank -> ErrHMACKeyMissing.
// If too short -> ErrHMACKeyTooShort.
func HMACKeyFromEnv(minBytes int) ([]byte, error) {
	raw := strings.TrimSpace(os.Getenv(HMACEnvKey))
	if raw == "" {
		return nil, ErrHMACKeyMissing
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrHMACKeyTooShort
	}
	return b, nil
}

// HMACEnabled reports whether the env key is present (non-empty after trim).
// It does not enforce minimum length; use HMACKeyFromEnv for policy checks.
func HMACEnabled() bool {
	raw := strings.TrimSpace(os.Getenv(HMACEnvKey))
	return raw != ""
}

// HashRefreshSecretHex hashes refresh secrets for server-side storage.
// Behavior:
// - If GRAVITY_TOKEN_HMAC_KEY is set (non-empty), uses HMAC-SHA256(secret, key).
// - Otherwise falls back to SHA-256(secret) for dev.
func HashRefreshSecretHex(secret string) string {
	key := strings.TrimSpace(os.Getenv(HMACEnvKey))
	if key == "" {
		return HashSHA256Hex(secret)
	}
	return HashHMACSHA256Hex(secret, []byte(key))
}

// HashRefreshSecretHexRequireHMAC hashes refresh secrets in enforced-HMAC mode.
// It fails if the key is missing or too short.
func HashRefreshSecretHexRequireHMAC(secret string, minBytes int) (string, error) {
	key, err := HMACKeyFromEnv(minBytes)
	if err != nil {
		return "", err
	}
	return HashHMACSHA256Hex(secret, key), nil
}
