package authapi

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jackc/pgx/v5"
)

func (h *Handler) auditSignup(ctx context.Context, userID, sessionID, ip, ua string) {
	h.insertAudit(ctx, "auth.signup", &userID, &sessionID, ip, ua, nil)
}

func (h *Handler) auditLoginFailed(ctx context.Context, userID *string, ip, ua, email, reason string) {
	h.insertAudit(ctx, "auth.login.failed", userID, nil, ip, ua, map[string]any{
		"email":  email,
		"reason": reason,
	})
}

func (h *Handler) auditLoginSuccess(ctx context.Context, userID, sessionID, ip, ua string) {
	h.insertAudit(ctx, "auth.login.success", &userID, &sessionID, ip, ua, nil)
}

func (h *Handler) auditLoginRateLimited(ctx context.Context, userID *string, ip, ua, email string) {
	h.insertAudit(ctx, "auth.login.rate_limited", userID, nil, ip, ua, map[string]any{
		"email": email,
	})
}

func (h *Handler) auditRefreshSuccess(ctx context.Context, sessionID, ip, ua string) {
	h.insertAudit(ctx, "auth.refresh.success", nil, &sessionID, ip, ua, nil)
}

// auditRefreshReuse records presentation of an already-rotated secret.
// The client response stays indistinguishable from any revoked session.
func (h *Handler) auditRefreshReuse(ctx context.Context, ip, ua string) {
	h.insertAudit(ctx, "auth.refresh.reuse", nil, nil, ip, ua, nil)
}

func (h *Handler) auditLogout(ctx context.Context, ip, ua string) {
	h.insertAudit(ctx, "auth.logout", nil, nil, ip, ua, nil)
}

func (h *Handler) auditLogoutAll(ctx context.Context, userID string, revoked int64, ip, ua string) {
	h.insertAudit(ctx, "auth.logout_all", &userID, nil, ip, ua, map[string]any{
		"revoked": revoked,
	})
}

func (h *Handler) auditSessionRevoked(ctx context.Context, userID, sessionID, ip, ua string) {
	h.insertAudit(ctx, "auth.session.revoked", &userID, &sessionID, ip, ua, nil)
}

// insertAudit is best-effort: audit failures are logged, never surfaced to
// clients, and skipped entirely when no pool is wired (tests, dev mode).
func (h *Handler) insertAudit(ctx context.Context, action string, userID *string, sessionID *string, ip, ua string, meta map[string]any) {
	if h == nil || h.pool == nil {
		return
	}

	action = strings.TrimSpace(action)
	if action == "" {
		return
	}

	var metaVal *string
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			s := string(b)
			metaVal = &s
		}
	}

	table := pgx.Identifier{h.cfg.Schema, "audit_log"}.Sanitize()
	_, err := h.pool.Exec(ctx, `
		INSERT INTO `+table+` (
			user_id, session_id, action, created_at, ip, user_agent, meta
		) VALUES ($1, $2, $3, now(), $4, $5, $6::jsonb)
	`, userID, sessionID, action, trimOrNil(ip), trimOrNil(ua), metaVal)
	if err != nil {
		h.log.Error("auth.audit.insert.fail", "err", err, "action", action)
	}
}

func trimOrNil(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return v
}
