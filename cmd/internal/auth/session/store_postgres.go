package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// PostgresStore implements Store using PostgreSQL (gravity.sessions).
//
// Rotation safety rests on RevokeIfActive being a single conditional UPDATE:
// Postgres serializes the two competing row updates, and exactly one sees
// revoked_at IS NULL.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// NewPostgresStore creates a Postgres-backed session store.
// The pool is owned by the caller; the store never closes it.
func NewPostgresStore(pool *pgxpool.Pool, schema string) (*PostgresStore, error) {
	schema = strings.TrimSpace(schema)
	if schema == "" {
		schema = "gravity"
	}
	if !pgIdentRe.MatchString(schema) {
		return nil, fmt.Errorf("session: invalid schema identifier")
	}
	if pool == nil {
		return nil, fmt.Errorf("session: nil pool")
	}
	return &PostgresStore{pool: pool, schema: schema}, nil
}

func (s *PostgresStore) table() string {
	return pgx.Identifier{s.schema, "sessions"}.Sanitize()
}

// Create inserts a new session row and returns its ULID.
func (s *PostgresStore) Create(ctx context.Context, now time.Time, userID string, dev DeviceContext, refreshHash string, expiresAt time.Time) (string, error) {
	id := ulid.Make().String()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+s.table()+` (
			id, user_id, refresh_token_hash,
			user_agent, ip, fingerprint,
			created_at, last_used_at, expires_at,
			revoked_at, revoked_reason
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			$7, $7, $8,
			NULL, NULL
		)
	`, id, userID, refreshHash, nullIfEmpty(dev.UserAgent), nullIfEmpty(dev.IP), dev.Fingerprint(), now, expiresAt)
	if err != nil {
		return "", err
	}

	return id, nil
}

// GetByID loads a session row by ID.
func (s *PostgresStore) GetByID(ctx context.Context, sessionID string) (Row, error) {
	return s.getWhere(ctx, `id = $1`, sessionID)
}

// GetByRefreshHash loads a session row by refresh secret hash.
func (s *PostgresStore) GetByRefreshHash(ctx context.Context, refreshHash string) (Row, error) {
	return s.getWhere(ctx, `refresh_token_hash = $1`, refreshHash)
}

func (s *PostgresStore) getWhere(ctx context.Context, where string, arg any) (Row, error) {
	var (
		row       Row
		userAgent *string
		ip        *string
		reason    *string
	)

	err := s.pool.QueryRow(ctx, `
		SELECT
			id, user_id, refresh_token_hash,
			user_agent, ip, fingerprint,
			created_at, last_used_at, expires_at,
			revoked_at, revoked_reason
		FROM `+s.table()+`
		WHERE `+where+`
	`, arg).Scan(
		&row.ID,
		&row.UserID,
		&row.RefreshHash,
		&userAgent,
		&ip,
		&row.Fingerprint,
		&row.CreatedAt,
		&row.LastUsedAt,
		&row.ExpiresAt,
		&row.RevokedAt,
		&reason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrSessionNotFound
	}
	if err != nil {
		return Row{}, err
	}

	if userAgent != nil {
		row.UserAgent = *userAgent
	}
	if ip != nil {
		row.IP = *ip
	}
	if reason != nil {
		row.RevokedReason = RevokeReason(*reason)
	}

	return row, nil
}

// RevokeIfActive revokes the session iff it is still active.
// The WHERE clause makes the transition atomic: concurrent callers race on
// the row update and exactly one reports matched.
func (s *PostgresStore) RevokeIfActive(ctx context.Context, now time.Time, sessionID string, reason RevokeReason) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE `+s.table()+`
		SET revoked_at = $2,
		    revoked_reason = $3
		WHERE id = $1 AND revoked_at IS NULL
	`, sessionID, now, string(reason))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RevokeAllActive revokes every active session for a user.
func (s *PostgresStore) RevokeAllActive(ctx context.Context, now time.Time, userID string, reason RevokeReason) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE `+s.table()+`
		SET revoked_at = $2,
		    revoked_reason = $3
		WHERE user_id = $1 AND revoked_at IS NULL
	`, userID, now, string(reason))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListActive returns the user's active sessions, newest first.
func (s *PostgresStore) ListActive(ctx context.Context, now time.Time, userID string) ([]Row, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			id, user_id, refresh_token_hash,
			user_agent, ip, fingerprint,
			created_at, last_used_at, expires_at,
			revoked_at, revoked_reason
		FROM `+s.table()+`
		WHERE user_id = $1
		  AND revoked_at IS NULL
		  AND expires_at > $2
		ORDER BY created_at DESC, id DESC
	`, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			row       Row
			userAgent *string
			ip        *string
			reason    *string
		)
		if err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.RefreshHash,
			&userAgent,
			&ip,
			&row.Fingerprint,
			&row.CreatedAt,
			&row.LastUsedAt,
			&row.ExpiresAt,
			&row.RevokedAt,
			&reason,
		); err != nil {
			return nil, err
		}
		if userAgent != nil {
			row.UserAgent = *userAgent
		}
		if ip != nil {
			row.IP = *ip
		}
		if reason != nil {
			row.RevokedReason = RevokeReason(*reason)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Touch updates last_used_at for a session.
func (s *PostgresStore) Touch(ctx context.Context, now time.Time, sessionID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE `+s.table()+`
		SET last_used_at = $2
		WHERE id = $1
	`, sessionID, now)
	return err
}

// DeleteExpired hard-deletes rows past expires_at.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM `+s.table()+`
		WHERE expires_at <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
