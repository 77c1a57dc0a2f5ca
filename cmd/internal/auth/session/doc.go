// Package session implements Gravity's session architecture.
//
// It provides a multi-device session model with refresh-secret rotation
// and per-session/per-user revocation.
//
// Access tokens are issued as HS256 JWTs and are short-lived.
// Refresh secrets are opaque random strings and are stored hashed in Postgres
// (HMAC-SHA256 when GRAVITY_TOKEN_HMAC_KEY is set; otherwise SHA-256 for dev).
//
// Transport (HTTP/WS) integration is intentionally out of scope here.
package session
