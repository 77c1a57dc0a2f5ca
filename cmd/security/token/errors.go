package token

import "errors"

// Stable sentinel errors for HMAC key configuration problems.
var (
	ErrHMACKeyMissing  = errors.New("token HMAC key missing")
	ErrHMACKeyTooShort = errors.New("token HMAC key too short")
)
