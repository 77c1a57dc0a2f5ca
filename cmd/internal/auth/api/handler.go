package authapi

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"gravity/cmd/identity"
	"gravity/cmd/internal/auth/session"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler wires HTTP auth endpoints to the identity store and session service.
//
// The refresh secret travels in an httpOnly cookie guarded by a double-submit
// CSRF token; it never appears in response bodies or logs. Non-browser
// clients may instead present the secret in the request body.
type Handler struct {
	log *slog.Logger
	cfg Config

	identity identity.Store
	sessions *session.Service
	codec    *session.JWTCodec

	// pool is used for the audit trail and login throttling only; nil
	// disables both (tests, DB-less development).
	pool *pgxpool.Pool

	dummyHash string
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, ids identity.Store, sessions *session.Service, codec *session.JWTCodec, pool *pgxpool.Pool) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if ids == nil {
		return nil, errors.New("auth: nil identity store")
	}
	if sessions == nil {
		return nil, errors.New("auth: nil session service")
	}
	if codec == nil {
		return nil, errors.New("auth: nil token codec")
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		identity: ids,
		sessions: sessions,
		codec:    codec,
		pool:     pool,
	}

	// Dummy hash for timing-resistant login checks.
	if hash, err := identity.HashPassword("dummy-password-for-timing-only"); err == nil {
		h.dummyHash = hash
	}

	return h, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /auth/register", h.handleRegister)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("POST /auth/refresh", h.handleRefresh)
	mux.HandleFunc("POST /auth/logout", h.handleLogout)
	mux.Handle("POST /auth/logout_all", RequireAuth(h.codec, http.HandlerFunc(h.handleLogoutAll)))
	mux.Handle("GET /auth/me", RequireAuth(h.codec, http.HandlerFunc(h.handleMe)))
	mux.Handle("GET /auth/sessions", RequireAuth(h.codec, http.HandlerFunc(h.handleSessionsList)))
	mux.Handle("DELETE /auth/sessions/{id}", RequireAuth(h.codec, http.HandlerFunc(h.handleSessionDelete)))
}

// Codec exposes the access-token verifier for other route groups.
func (h *Handler) Codec() *session.JWTCodec { return h.codec }

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || strings.TrimSpace(req.Password) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name, email and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	dev := deviceContext(r, h.cfg.TrustProxy)

	// Self-registration always yields a student; admins are provisioned
	// out of band.
	res, err := h.identity.CreateUser(ctx, identity.CreateUserInput{
		Name:     name,
		Email:    email,
		Password: req.Password,
		Role:     identity.RoleStudent,
		Now:      now,
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			writeError(w, http.StatusConflict, "conflict", "email already registered")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
		default:
			h.log.Error("auth.register.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	issued, err := h.sessions.Issue(ctx, now, res.User.ID, string(res.User.Role), dev)
	if err != nil {
		h.log.Error("auth.register.issue_session.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.auditSignup(ctx, res.User.ID, issued.SessionID, dev.IP, dev.UserAgent)

	if _, err := h.setWebSessionCookies(w, issued.RefreshSecret, issued.RefreshExp); err != nil {
		h.log.Error("auth.register.web_cookie.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		User:            toUserResponse(res.User),
		AccessToken:     issued.AccessToken,
		AccessExpiresAt: issued.AccessExp,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)
	if email == "" || password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	dev := deviceContext(r, h.cfg.TrustProxy)
	emailNorm := identity.NormalizeEmail(email)

	// IP-based throttling before the DB lookup.
	if blocked, retryAfter, err := h.checkLoginIPThrottle(ctx, dev.IP, now); err != nil {
		h.log.Error("auth.login.throttle_ip.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
		return
	} else if blocked {
		h.auditLoginRateLimited(ctx, nil, dev.IP, dev.UserAgent, emailNorm)
		writeRateLimited(w, retryAfter)
		return
	}

	userAuth, err := h.identity.GetUserAuthByEmail(ctx, email)
	if err != nil {
		// Timing resistance: perform a dummy verify when the user is missing.
		if h.dummyHash != "" {
			_, _ = identity.VerifyPassword(password, h.dummyHash)
		}
		h.auditLoginFailed(ctx, nil, dev.IP, dev.UserAgent, emailNorm, "not_found")
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	if blocked, retryAfter, err := h.checkLoginUserThrottle(ctx, userAuth.User.ID, now); err != nil {
		h.log.Error("auth.login.throttle_user.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
		return
	} else if blocked {
		h.auditLoginRateLimited(ctx, &userAuth.User.ID, dev.IP, dev.UserAgent, emailNorm)
		writeRateLimited(w, retryAfter)
		return
	}

	okPw, err := identity.VerifyPassword(password, userAuth.PasswordHash)
	if err != nil || !okPw {
		h.auditLoginFailed(ctx, &userAuth.User.ID, dev.IP, dev.UserAgent, emailNorm, "bad_password")
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	issued, err := h.sessions.Issue(ctx, now, userAuth.User.ID, string(userAuth.User.Role), dev)
	if err != nil {
		h.log.Error("auth.login.issue_session.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.auditLoginSuccess(ctx, userAuth.User.ID, issued.SessionID, dev.IP, dev.UserAgent)

	if _, err := h.setWebSessionCookies(w, issued.RefreshSecret, issued.RefreshExp); err != nil {
		h.log.Error("auth.login.web_cookie.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		User:            toUserResponse(userAuth.User),
		AccessToken:     issued.AccessToken,
		AccessExpiresAt: issued.AccessExp,
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	secret, fromCookie := h.refreshSecretFromCookie(r)
	if !fromCookie && r.ContentLength != 0 {
		var req refreshRequest
		if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
			return
		}
		secret = strings.TrimSpace(req.RefreshToken)
	}
	if secret == "" {
		writeError(w, http.StatusUnauthorized, "session_not_active", "missing refresh token")
		return
	}
	if fromCookie && !h.csrfDoubleSubmitValid(r) {
		writeError(w, http.StatusForbidden, "csrf_invalid", "missing or invalid csrf token")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	dev := deviceContext(r, h.cfg.TrustProxy)

	issued, err := h.sessions.Rotate(ctx, now, secret, dev)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrRefreshReuse):
			// Operators see the reuse; the client sees a plain 401.
			h.auditRefreshReuse(ctx, dev.IP, dev.UserAgent)
			writeError(w, http.StatusUnauthorized, "session_not_active", "session not active")
		case errors.Is(err, session.ErrSessionExpired),
			errors.Is(err, session.ErrSessionRevoked),
			errors.Is(err, session.ErrSessionNotFound):
			writeError(w, http.StatusUnauthorized, "session_not_active", "session not active")
		default:
			h.log.Error("auth.refresh.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.auditRefreshSuccess(ctx, issued.SessionID, dev.IP, dev.UserAgent)

	if _, err := h.setWebSessionCookies(w, issued.RefreshSecret, issued.RefreshExp); err != nil {
		h.log.Error("auth.refresh.web_cookie.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{
		AccessToken:     issued.AccessToken,
		AccessExpiresAt: issued.AccessExp,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	secret, fromCookie := h.refreshSecretFromCookie(r)
	if !fromCookie && r.ContentLength != 0 {
		var req logoutRequest
		if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
			return
		}
		secret = strings.TrimSpace(req.RefreshToken)
	}

	ctx := r.Context()
	now := time.Now().UTC()
	dev := deviceContext(r, h.cfg.TrustProxy)

	// Idempotent: unknown or missing secrets still clear the cookies and
	// report success.
	if secret != "" {
		if err := h.sessions.Logout(ctx, now, secret); err != nil {
			h.log.Error("auth.logout.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
			return
		}
		h.auditLogout(ctx, dev.IP, dev.UserAgent)
	}

	h.clearWebSessionCookies(w)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	dev := deviceContext(r, h.cfg.TrustProxy)

	revoked, err := h.sessions.LogoutAll(ctx, now, p.ID)
	if err != nil {
		h.log.Error("auth.logout_all.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.auditLogoutAll(ctx, p.ID, revoked, dev.IP, dev.UserAgent)
	h.clearWebSessionCookies(w)
	writeJSON(w, http.StatusOK, logoutAllResponse{Revoked: revoked})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	u, err := h.identity.GetUserByID(r.Context(), p.ID)
	if err != nil {
		if identity.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "user not found")
			return
		}
		h.log.Error("auth.me.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: toUserResponse(u)})
}

func (h *Handler) handleSessionsList(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	rows, err := h.sessions.ListSessions(r.Context(), time.Now().UTC(), p.ID)
	if err != nil {
		h.log.Error("auth.sessions.list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	items := make([]sessionItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toSessionItem(row))
	}
	writeJSON(w, http.StatusOK, sessionListResponse{Sessions: items})
}

func (h *Handler) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	sessionID := strings.TrimSpace(r.PathValue("id"))
	if sessionID == "" {
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	dev := deviceContext(r, h.cfg.TrustProxy)

	if err := h.sessions.RevokeByID(ctx, now, p.ID, sessionID); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		h.log.Error("auth.sessions.revoke.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.auditSessionRevoked(ctx, p.ID, sessionID, dev.IP, dev.UserAgent)
	w.WriteHeader(http.StatusNoContent)
}

// ---- helpers ----

func deviceContext(r *http.Request, trustProxy bool) session.DeviceContext {
	return session.DeviceContext{
		UserAgent: strings.TrimSpace(r.UserAgent()),
		IP:        clientIP(r, trustProxy),
	}
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := parseForwardedIP(r.Header.Get("X-Forwarded-For")); ip != "" {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip.String()
		}
	}
	return ""
}

func parseForwardedIP(raw string) string {
	if raw == "" {
		return ""
	}
	for _, p := range strings.Split(raw, ",") {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
