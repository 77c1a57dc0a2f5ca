package app

import (
	"errors"

	"gravity/cmd/security/token"
)

// ValidateSecurityConfig enforces the runtime security policy at startup.
// Fail-fast: silently falling back to weaker crypto in production is
// unacceptable, so enforcement validates the same module that performs the
// hashing.
func ValidateSecurityConfig(cfg Config) error {
	if !cfg.RequireTokenHMAC {
		return nil
	}

	// Minimum 32 bytes for an HMAC-SHA256 key, measured as raw bytes.
	if _, err := token.HMACKeyFromEnv(32); err != nil {
		switch {
		case errors.Is(err, token.ErrHMACKeyMissing):
			return errors.New("security policy: GRAVITY_REQUIRE_TOKEN_HMAC=true but GRAVITY_TOKEN_HMAC_KEY is missing")
		case errors.Is(err, token.ErrHMACKeyTooShort):
			return errors.New("security policy: GRAVITY_REQUIRE_TOKEN_HMAC=true but GRAVITY_TOKEN_HMAC_KEY is too short (min 32 bytes)")
		default:
			return err
		}
	}

	// Guards against future changes reintroducing a SHA fallback under policy.
	if !token.HMACEnabled() {
		return errors.New("security policy: GRAVITY_REQUIRE_TOKEN_HMAC=true but token hasher is not in HMAC mode")
	}

	return nil
}
