// Package identity implements Gravity's identity foundation.
//
// It contains the user model (admins and students), password hashing
// delegation, and store interfaces used by the HTTP layer.
//
// This package is intentionally dependency-light and security-first.
package identity
