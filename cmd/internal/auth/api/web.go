package authapi

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

// setWebSessionCookies installs the refresh cookie (httpOnly) and a fresh
// CSRF cookie (script-readable, echoed back in the CSRF header). Returns the
// CSRF value so login/refresh responses can include it.
func (h *Handler) setWebSessionCookies(w http.ResponseWriter, refreshSecret string, refreshExp time.Time) (string, error) {
	csrf, err := newOpaqueWebToken(32)
	if err != nil {
		return "", err
	}

	h.setCookie(w, h.cfg.RefreshCookieName, refreshSecret, refreshExp, true)
	h.setCookie(w, h.cfg.CSRFCookieName, csrf, refreshExp, false)
	return csrf, nil
}

func (h *Handler) clearWebSessionCookies(w http.ResponseWriter) {
	if h == nil || w == nil {
		return
	}

	// Max-Age -1 plus an epoch Expires kills the cookie in every browser.
	gone := time.Unix(0, 0).UTC()
	c := h.buildCookie(h.cfg.RefreshCookieName, "", gone, true)
	c.MaxAge = -1
	http.SetCookie(w, c)

	c = h.buildCookie(h.cfg.CSRFCookieName, "", gone, false)
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func (h *Handler) refreshSecretFromCookie(r *http.Request) (string, bool) {
	if h == nil || r == nil {
		return "", false
	}
	c, err := r.Cookie(h.cfg.RefreshCookieName)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	return v, v != ""
}

// csrfDoubleSubmitValid compares the CSRF cookie against the CSRF header in
// constant time. Both must be present and equal.
func (h *Handler) csrfDoubleSubmitValid(r *http.Request) bool {
	if h == nil || r == nil {
		return false
	}
	c, err := r.Cookie(h.cfg.CSRFCookieName)
	if err != nil {
		return false
	}
	cv := strings.TrimSpace(c.Value)
	hv := strings.TrimSpace(r.Header.Get(h.cfg.CSRFHeaderName))
	if cv == "" || hv == "" {
		return false
	}
	return secureStringEqual(cv, hv)
}

func (h *Handler) setCookie(w http.ResponseWriter, name, value string, exp time.Time, httpOnly bool) {
	if h == nil || w == nil || strings.TrimSpace(name) == "" {
		return
	}
	http.SetCookie(w, h.buildCookie(name, value, exp, httpOnly))
}

func (h *Handler) buildCookie(name, value string, exp time.Time, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  exp,
		HttpOnly: httpOnly,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	}
}

func newOpaqueWebToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func secureStringEqual(a, b string) bool {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
