package session

import (
	"context"
	"errors"
	"strings"
	"time"
)

// RoleSource resolves the role claim for a user when a session is rotated.
// Login paths already know the role; rotation only holds a user ID.
type RoleSource interface {
	RoleByUserID(ctx context.Context, userID string) (string, error)
}

// RoleSourceFunc adapts a function to the RoleSource interface.
type RoleSourceFunc func(ctx context.Context, userID string) (string, error)

func (f RoleSourceFunc) RoleByUserID(ctx context.Context, userID string) (string, error) {
	return f(ctx, userID)
}

// Service implements the high-level session operations for Gravity.
//
// It issues sessions (access + refresh), rotates refresh secrets, and
// supports per-session and per-user revocation. Rotation safety does not
// depend on store transactions: the Store's atomic RevokeIfActive elects
// exactly one winner among concurrent refreshes of the same secret.
type Service struct {
	cfg   Config
	codec *JWTCodec
	store Store
	roles RoleSource
}

// Issued is the result of issuing or rotating a session.
// It includes a short-lived access token and an opaque refresh secret.
// RefreshSecret is shown to the client exactly once and never logged.
type Issued struct {
	SessionID     string
	AccessToken   string
	AccessExp     time.Time
	RefreshSecret string
	RefreshExp    time.Time
}

// NewService constructs a Service with the provided configuration, store,
// codec, and role source.
func NewService(cfg Config, store Store, codec *JWTCodec, roles RoleSource) *Service {
	return &Service{cfg: cfg, store: store, codec: codec, roles: roles}
}

// Issue creates a new session row and returns fresh tokens.
//
// Refresh secrets are opaque random strings and must never be persisted in
// plaintext. Only the 64-hex digest is stored.
func (s *Service) Issue(ctx context.Context, now time.Time, userID, role string, dev DeviceContext) (Issued, error) {
	refreshPlain, refreshHash, err := newOpaqueRefreshSecret(s.cfg.RefreshTokenBytes)
	if err != nil {
		return Issued{}, err
	}

	refreshExp := now.Add(s.cfg.RefreshTokenTTL)

	sessionID, err := s.store.Create(ctx, now, userID, dev, refreshHash, refreshExp)
	if err != nil {
		return Issued{}, err
	}

	accessToken, accessExp, err := s.codec.Issue(userID, role, now)
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		SessionID:     sessionID,
		AccessToken:   accessToken,
		AccessExp:     accessExp,
		RefreshSecret: refreshPlain,
		RefreshExp:    refreshExp,
	}, nil
}

// Rotate exchanges a refresh secret for a new session and access token.
//
// Security model:
//   - Unknown secret: ErrSessionNotFound.
//   - Revoked session: ErrSessionRevoked; if it was revoked by a previous
//     rotation, the error additionally matches ErrRefreshReuse so callers
//     can audit the reuse without telling the client anything extra.
//   - Expired session: best-effort revoke with reason "expired", then
//     ErrSessionExpired.
//   - Otherwise: RevokeIfActive(rotated) decides the race. The loser of a
//     concurrent rotation observes matched=false and fails ErrSessionRevoked;
//     the winner inserts the successor row and issues a new access token.
func (s *Service) Rotate(ctx context.Context, now time.Time, refreshSecret string, dev DeviceContext) (Issued, error) {
	refreshSecret = strings.TrimSpace(refreshSecret)
	// Basic sanity bounds to avoid pathological inputs.
	if refreshSecret == "" || len(refreshSecret) > 4096 {
		return Issued{}, ErrSessionNotFound
	}

	// Hash the secret in-memory (never persist or log the plain value).
	refreshHash := hashRefreshSecretHex(refreshSecret)

	row, err := s.store.GetByRefreshHash(ctx, refreshHash)
	if err != nil {
		return Issued{}, err
	}

	if row.RevokedAt != nil {
		if row.RevokedReason == RevokedRotated {
			return Issued{}, ErrRefreshReuse
		}
		return Issued{}, ErrSessionRevoked
	}

	if !row.ExpiresAt.After(now) {
		// Record the terminal state; failure here must not mask the outcome.
		_, _ = s.store.RevokeIfActive(ctx, now, row.ID, RevokedExpired)
		return Issued{}, ErrSessionExpired
	}

	matched, err := s.store.RevokeIfActive(ctx, now, row.ID, RevokedRotated)
	if err != nil {
		return Issued{}, err
	}
	if !matched {
		// A concurrent rotation or revocation won.
		return Issued{}, ErrSessionRevoked
	}

	// Record the final use of the retired session.
	_ = s.store.Touch(ctx, now, row.ID)

	role, err := s.roles.RoleByUserID(ctx, row.UserID)
	if err != nil {
		return Issued{}, err
	}

	newPlain, newHash, err := newOpaqueRefreshSecret(s.cfg.RefreshTokenBytes)
	if err != nil {
		return Issued{}, err
	}
	newExp := now.Add(s.cfg.RefreshTokenTTL)

	newSessionID, err := s.store.Create(ctx, now, row.UserID, dev, newHash, newExp)
	if err != nil {
		return Issued{}, err
	}

	accessToken, accessExp, err := s.codec.Issue(row.UserID, role, now)
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		SessionID:     newSessionID,
		AccessToken:   accessToken,
		AccessExp:     accessExp,
		RefreshSecret: newPlain,
		RefreshExp:    newExp,
	}, nil
}

// Logout revokes the session owning the refresh secret (reason "logout").
// Unknown or already-revoked secrets succeed: logout is idempotent.
func (s *Service) Logout(ctx context.Context, now time.Time, refreshSecret string) error {
	refreshSecret = strings.TrimSpace(refreshSecret)
	if refreshSecret == "" || len(refreshSecret) > 4096 {
		return nil
	}

	row, err := s.store.GetByRefreshHash(ctx, hashRefreshSecretHex(refreshSecret))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}

	_, err = s.store.RevokeIfActive(ctx, now, row.ID, RevokedLogout)
	return err
}

// LogoutAll revokes every active session of the user (reason "logout_all")
// and returns how many were revoked.
func (s *Service) LogoutAll(ctx context.Context, now time.Time, userID string) (int64, error) {
	return s.store.RevokeAllActive(ctx, now, userID, RevokedLogoutAll)
}

// ListSessions returns the user's active sessions, newest first.
// Rows include device metadata and timestamps; handlers must never expose
// RefreshHash.
func (s *Service) ListSessions(ctx context.Context, now time.Time, userID string) ([]Row, error) {
	return s.store.ListActive(ctx, now, userID)
}

// RevokeByID revokes one of the user's own sessions (reason "manual_revoke").
// Foreign or missing sessions fail with ErrSessionNotFound; the caller learns
// nothing about other users' session IDs.
func (s *Service) RevokeByID(ctx context.Context, now time.Time, userID, sessionID string) error {
	row, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if row.UserID != userID {
		return ErrSessionNotFound
	}

	matched, err := s.store.RevokeIfActive(ctx, now, sessionID, RevokedManual)
	if err != nil {
		return err
	}
	if !matched {
		return ErrSessionNotFound
	}
	return nil
}

// SweepExpired deletes sessions past their expiry. Intended for a background
// ticker; correctness never depends on it.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.store.DeleteExpired(ctx, now)
}

// VerifyAccess verifies an access token. Pure: no store lookup, so revocation
// takes effect only at the refresh boundary.
func (s *Service) VerifyAccess(token string, now time.Time) (AccessClaims, error) {
	return s.codec.Verify(token, now)
}
