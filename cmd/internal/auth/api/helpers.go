package authapi

import (
	"gravity/cmd/identity"
	"gravity/cmd/internal/auth/session"
)

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func toSessionItem(r session.Row) sessionItem {
	return sessionItem{
		ID:          r.ID,
		UserAgent:   r.UserAgent,
		IP:          r.IP,
		Fingerprint: r.Fingerprint,
		CreatedAt:   r.CreatedAt,
		LastUsedAt:  r.LastUsedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}
