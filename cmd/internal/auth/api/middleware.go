package authapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gravity/cmd/identity"
	"gravity/cmd/internal/auth/session"
)

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	ID   string
	Role identity.Role
}

// HasRole reports whether the principal carries the role. Authorization
// decisions go through this capability rather than comparing fields at
// call sites.
func (p Principal) HasRole(r identity.Role) bool { return p.Role == r }

type ctxKey int

const principalKey ctxKey = iota

// PrincipalFromContext returns the request principal set by RequireAuth.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// ContextWithPrincipal attaches a principal; exported for handler tests.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Verifier verifies bearer access tokens. *session.JWTCodec satisfies it.
type Verifier interface {
	Verify(token string, now time.Time) (session.AccessClaims, error)
}

// RequireAuth rejects requests without a valid bearer token and attaches the
// Principal to the context. Verification is pure: revoked sessions keep a
// working access token until it expires.
func RequireAuth(v Verifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		claims, err := v.Verify(token, time.Now().UTC())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		role, ok := identity.ParseRole(claims.Role)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		p := Principal{ID: claims.SubjectID, Role: role}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
	})
}

// RequireRole layers a role check on top of RequireAuth.
func RequireRole(v Verifier, role identity.Role, next http.Handler) http.Handler {
	return RequireAuth(v, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok || !p.HasRole(role) {
			writeError(w, http.StatusForbidden, "forbidden", "insufficient role")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
