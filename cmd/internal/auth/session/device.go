package session

import (
	"crypto/sha256"
	"encoding/hex"
)

// DeviceContext describes the client device that owns a session.
// Both fields are free-form request metadata; neither is authenticated.
type DeviceContext struct {
	UserAgent string
	IP        string
}

// Fingerprint returns a short display label for the device: the first
// 32 hex chars of SHA-256(user_agent + "\n" + ip).
//
// It is NOT a security boundary. Sessions are never matched or trusted by
// fingerprint; it only helps a user tell their devices apart in a list.
func (d DeviceContext) Fingerprint() string {
	sum := sha256.Sum256([]byte(d.UserAgent + "\n" + d.IP))
	return hex.EncodeToString(sum[:])[:32]
}
