package authapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Login throttling is derived from the audit trail: no extra state, and the
// windows survive restarts. Disabled when no pool is wired.

func (h *Handler) checkLoginIPThrottle(ctx context.Context, ip string, now time.Time) (bool, time.Duration, error) {
	if h.pool == nil || strings.TrimSpace(ip) == "" || h.cfg.LoginIPMax <= 0 {
		return false, 0, nil
	}

	cut := now.Add(-h.cfg.LoginIPWindow)
	table := pgx.Identifier{h.cfg.Schema, "audit_log"}.Sanitize()

	var n int
	err := h.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM `+table+`
		WHERE action = 'auth.login.failed'
		  AND ip = $1
		  AND created_at >= $2
	`, ip, cut).Scan(&n)
	if err != nil {
		return false, 0, err
	}
	if n >= h.cfg.LoginIPMax {
		return true, h.cfg.LoginIPWindow, nil
	}
	return false, 0, nil
}

func (h *Handler) checkLoginUserThrottle(ctx context.Context, userID string, now time.Time) (bool, time.Duration, error) {
	if h.pool == nil || strings.TrimSpace(userID) == "" || h.cfg.LoginUserMax <= 0 {
		return false, 0, nil
	}

	cut := now.Add(-h.cfg.LoginUserWindow)
	table := pgx.Identifier{h.cfg.Schema, "audit_log"}.Sanitize()

	var n int
	err := h.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM `+table+`
		WHERE action = 'auth.login.failed'
		  AND user_id = $1
		  AND created_at >= $2
	`, userID, cut).Scan(&n)
	if err != nil {
		return false, 0, err
	}
	if n >= h.cfg.LoginUserMax {
		return true, h.cfg.LoginUserWindow, nil
	}
	return false, 0, nil
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
	}
	writeError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
}
