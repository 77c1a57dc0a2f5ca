package authapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gravity/cmd/identity"
	"gravity/cmd/internal/auth/session"
)

func testCodec(t *testing.T) *session.JWTCodec {
	t.Helper()
	cfg := session.DefaultConfig()
	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	codec, err := session.NewJWTCodec(cfg)
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}
	return codec
}

func issueBearer(t *testing.T, codec *session.JWTCodec, userID string, role identity.Role) string {
	t.Helper()
	token, _, err := codec.Issue(userID, string(role), time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func TestRequireAuth_AttachesPrincipal(t *testing.T) {
	codec := testCodec(t)
	token := issueBearer(t, codec, "user-1", identity.RoleStudent)

	var got Principal
	h := RequireAuth(codec, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got.ID != "user-1" || got.Role != identity.RoleStudent {
		t.Fatalf("principal = %+v", got)
	}
}

func TestRequireAuth_RejectsMissingAndMalformed(t *testing.T) {
	codec := testCodec(t)
	h := RequireAuth(codec, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler reached")
	}))

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer garbage-token"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, rr.Code)
		}
	}
}

func TestRequireRole_EnforcesRole(t *testing.T) {
	codec := testCodec(t)

	h := RequireRole(codec, identity.RoleAdmin, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issueBearer(t, codec, "s-1", identity.RoleStudent))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("student: status = %d, want 403", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issueBearer(t, codec, "a-1", identity.RoleAdmin))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", rr.Code)
	}
}

func TestBearerToken_Parsing(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc.def.ghi", "abc.def.ghi"},
		{"Bearer   spaced  ", "spaced"},
		{"Token abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := bearerToken(req); got != tc.want {
			t.Fatalf("header %q: got %q, want %q", tc.header, got, tc.want)
		}
	}
}
