// Package identity password hashing (Argon2id).
//
// identity delegates to cmd/security/password as the single source of truth
// for Argon2id parameters (defaults + env overrides), password policy, and
// strict PHC decoding with anti-DoS bounds during Verify.
//
// identity keeps a historical baseline of min length 8, but honors stricter
// env policy.
package identity

import (
	"errors"

	"gravity/cmd/security/password"
)

// HashPassword returns a PHC-style Argon2id hash string.
//
// Security contract:
// - Enforces a baseline min length of 8.
// - Honors stricter password policy from env (via security/password).
func HashPassword(passwordPlain string) (string, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		// Treat invalid env as an operational error, not a weak fallback.
		return "", err
	}
	applyIdentityBaseline(&cfg)

	enc, err := cfg.Hash(passwordPlain)
	if err != nil {
		switch {
		case errors.Is(err, password.ErrPasswordTooShort):
			return "", errors.New("password too short")
		case errors.Is(err, password.ErrPasswordTooLong):
			return "", errors.New("password too long")
		case errors.Is(err, password.ErrWeakPassword):
			return "", errors.New("weak password")
		default:
			return "", err
		}
	}

	return enc, nil
}

// VerifyPassword checks a password against a PHC Argon2id hash.
//
// Security contract:
// - Strict PHC parsing.
// - Anti-DoS: verification refuses hashes with parameters wildly above configured maxima.
func VerifyPassword(passwordPlain string, encodedPHC string) (bool, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		return false, err
	}
	applyIdentityBaseline(&cfg)

	ok, err := cfg.Verify(encodedPHC, passwordPlain)
	if err != nil {
		if errors.Is(err, password.ErrInvalidHash) {
			return false, errors.New("invalid argon2id hash format")
		}
		return false, err
	}
	return ok, nil
}

// applyIdentityBaseline pins the identity policy floor: env may tighten the
// policy but never weaken it below min 8 / max 256.
func applyIdentityBaseline(cfg *password.Config) {
	if cfg.Policy.MinLength < 8 {
		cfg.Policy.MinLength = 8
	}
	if cfg.Policy.MaxLength <= 0 {
		cfg.Policy.MaxLength = 256
	}
}
