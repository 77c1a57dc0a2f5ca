package realtime

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"gravity/cmd/internal/auth/session"
)

type staticVerifier struct {
	claims session.AccessClaims
	err    error
	seen   string
}

func (v *staticVerifier) Verify(token string, _ time.Time) (session.AccessClaims, error) {
	v.seen = token
	if v.err != nil {
		return session.AccessClaims{}, v.err
	}
	return v.claims, nil
}

func TestOriginHostOnly(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"http://localhost:5173", "localhost"},
		{"https://Hostel.Example", "hostel.example"},
		{"localhost:8080", "localhost"},
		{"LOCALHOST", "localhost"},
		{"http://", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := originHostOnly(tc.in); got != tc.want {
			t.Errorf("originHostOnly(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDeriveOriginPatterns(t *testing.T) {
	got := deriveOriginPatterns([]string{
		"http://localhost:5173",
		"http://localhost",
		"https://hostel.example",
		"*",
		"",
	})
	want := []string{"hostel.example", "localhost"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEnforceOrigin(t *testing.T) {
	g := &Gateway{
		originRequired: true,
		allowedOrigins: []string{"http://localhost", "http://127.0.0.1"},
	}

	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	// Host match ignores the port, so dev servers on any port pass.
	if err := g.enforceOrigin(req("http://localhost:5173")); err != nil {
		t.Fatalf("localhost:5173: %v", err)
	}
	if err := g.enforceOrigin(req("http://127.0.0.1:3000")); err != nil {
		t.Fatalf("127.0.0.1:3000: %v", err)
	}
	if err := g.enforceOrigin(req("https://evil.example")); err == nil {
		t.Fatal("unknown origin should be rejected")
	}
	if err := g.enforceOrigin(req("")); err == nil {
		t.Fatal("missing origin should be rejected when required")
	}

	g.originRequired = false
	if err := g.enforceOrigin(req("")); err != nil {
		t.Fatalf("missing origin allowed when not required: %v", err)
	}
}

func TestAuthenticate_TokenSources(t *testing.T) {
	v := &staticVerifier{claims: session.AccessClaims{SubjectID: "u1", Role: "student"}}
	g := &Gateway{verifier: v}

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	claims, err := g.authenticate(r)
	if err != nil || claims.SubjectID != "u1" {
		t.Fatalf("bearer auth: claims=%+v err=%v", claims, err)
	}
	if v.seen != "header-token" {
		t.Fatalf("verifier saw %q", v.seen)
	}

	r = httptest.NewRequest(http.MethodGet, "/ws?token=query-token", nil)
	if _, err := g.authenticate(r); err != nil {
		t.Fatalf("query auth: %v", err)
	}
	if v.seen != "query-token" {
		t.Fatalf("verifier saw %q", v.seen)
	}

	// Header wins over query when both are present.
	r = httptest.NewRequest(http.MethodGet, "/ws?token=query-token", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	if _, err := g.authenticate(r); err != nil {
		t.Fatalf("both sources: %v", err)
	}
	if v.seen != "header-token" {
		t.Fatalf("verifier saw %q, want header token", v.seen)
	}

	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	if _, err := g.authenticate(r); err == nil {
		t.Fatal("missing token should fail")
	}

	v.err = errors.New("bad signature")
	r = httptest.NewRequest(http.MethodGet, "/ws?token=tampered", nil)
	if _, err := g.authenticate(r); err == nil {
		t.Fatal("verifier error should propagate")
	}
}
