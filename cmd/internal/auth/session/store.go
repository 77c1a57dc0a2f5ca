package session

import (
	"context"
	"time"
)

// RevokeReason records why a session left the active state.
// All reasons are terminal: a revoked session never becomes active again.
type RevokeReason string

const (
	// RevokedExpired marks a session revoked because its refresh secret
	// was presented after expiry.
	RevokedExpired RevokeReason = "expired"
	// RevokedRotated marks the predecessor session after a refresh rotation.
	RevokedRotated RevokeReason = "rotated"
	// RevokedLogout marks a single-device logout.
	RevokedLogout RevokeReason = "logout"
	// RevokedLogoutAll marks a logout-everywhere sweep.
	RevokedLogoutAll RevokeReason = "logout_all"
	// RevokedManual marks an explicit per-session revocation from the
	// session list.
	RevokedManual RevokeReason = "manual_revoke"
)

// Row mirrors the gravity.sessions row used by the session subsystem.
// RefreshHash is the only secret-derived field; the plain secret never
// reaches storage.
type Row struct {
	ID          string
	UserID      string
	RefreshHash string

	UserAgent   string
	IP          string
	Fingerprint string

	CreatedAt  time.Time
	LastUsedAt *time.Time
	ExpiresAt  time.Time

	RevokedAt     *time.Time
	RevokedReason RevokeReason
}

// Active reports whether the row is neither revoked nor expired at now.
func (r Row) Active(now time.Time) bool {
	return r.RevokedAt == nil && r.ExpiresAt.After(now)
}

// Store abstracts persistence for session state.
//
// RevokeIfActive is the linchpin: it must be an atomic compare-and-revoke
// so concurrent refreshes of the same secret elect exactly one winner.
type Store interface {
	// Create inserts a new session row and returns its ID.
	Create(
		ctx context.Context,
		now time.Time,
		userID string,
		dev DeviceContext,
		refreshHash string,
		expiresAt time.Time,
	) (sessionID string, err error)

	// GetByID loads a session row by ID. Returns ErrSessionNotFound.
	GetByID(ctx context.Context, sessionID string) (Row, error)

	// GetByRefreshHash loads a session row by refresh secret hash,
	// revoked or not. Returns ErrSessionNotFound.
	GetByRefreshHash(ctx context.Context, refreshHash string) (Row, error)

	// RevokeIfActive atomically revokes the session iff it is not yet
	// revoked, and reports whether it matched. The first caller wins;
	// later calls never overwrite the recorded reason or timestamp.
	RevokeIfActive(ctx context.Context, now time.Time, sessionID string, reason RevokeReason) (bool, error)

	// RevokeAllActive revokes every active session of a user and returns
	// the number of sessions revoked.
	RevokeAllActive(ctx context.Context, now time.Time, userID string, reason RevokeReason) (int64, error)

	// ListActive returns the user's non-revoked, non-expired sessions,
	// newest first.
	ListActive(ctx context.Context, now time.Time, userID string) ([]Row, error)

	// Touch updates last_used_at for a session (best-effort).
	Touch(ctx context.Context, now time.Time, sessionID string) error

	// DeleteExpired hard-deletes rows past expires_at and returns the
	// number deleted. Hygiene only: read paths re-check expiry themselves.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
