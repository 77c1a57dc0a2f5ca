package session

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenMalformed is returned when an access token cannot be parsed
	// or is missing required claims.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenSignatureInvalid is returned when an access token fails
	// signature verification.
	ErrTokenSignatureInvalid = errors.New("token signature invalid")

	// ErrTokenExpired is returned when an access token is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrSessionNotFound is returned when a refresh secret or session ID
	// does not match any session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when the session is expired.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionRevoked is returned when the session has been revoked.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrRefreshReuse is returned when a rotated refresh secret is presented
	// again. It unwraps to ErrSessionRevoked: clients see the same failure
	// as any revoked session, while callers can audit the reuse distinctly.
	ErrRefreshReuse = fmt.Errorf("refresh secret reuse: %w", ErrSessionRevoked)

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
