package authapi

import "time"

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// refreshRequest is the optional body for non-browser clients; browsers use
// the refresh cookie instead.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// authResponse deliberately omits the refresh secret: it travels only in
// the httpOnly cookie.
type authResponse struct {
	User            userResponse `json:"user"`
	AccessToken     string       `json:"access_token"`
	AccessExpiresAt time.Time    `json:"access_expires_at"`
}

type refreshResponse struct {
	AccessToken     string    `json:"access_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

type meResponse struct {
	User userResponse `json:"user"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type logoutAllResponse struct {
	Revoked int64 `json:"revoked"`
}

// sessionItem carries device metadata and timestamps only. Refresh hashes
// never leave the store layer.
type sessionItem struct {
	ID          string     `json:"id"`
	UserAgent   string     `json:"user_agent"`
	IP          string     `json:"ip"`
	Fingerprint string     `json:"fingerprint"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

type sessionListResponse struct {
	Sessions []sessionItem `json:"sessions"`
}
