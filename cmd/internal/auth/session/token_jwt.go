package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the minimal identity envelope propagated across HTTP/WS.
type AccessClaims struct {
	SubjectID string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// JWTCodec issues and verifies short-lived HS256 access tokens.
//
// Claims are exactly {sub, role, iat, exp}. Verification is pure: it never
// consults the session store, so a revoked session's access token remains
// valid until it expires. Safe for concurrent use.
type JWTCodec struct {
	secret    []byte
	ttl       time.Duration
	clockSkew time.Duration
}

// NewJWTCodec builds a JWTCodec from cfg.
//
// Returns ErrConfig when the signing secret is shorter than 32 bytes.
func NewJWTCodec(cfg Config) (*JWTCodec, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, ErrConfig
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, ErrConfig
	}

	return &JWTCodec{
		secret:    []byte(cfg.JWTSecret),
		ttl:       cfg.AccessTokenTTL,
		clockSkew: cfg.ClockSkew,
	}, nil
}

// Issue signs a new access token for the subject with the given role claim.
func (c *JWTCodec) Issue(subjectID, role string, now time.Time) (string, time.Time, error) {
	exp := now.Add(c.ttl)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subjectID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	})

	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses and validates an access token at the given instant.
//
// Failures are distinguished: ErrTokenMalformed, ErrTokenSignatureInvalid,
// ErrTokenExpired. Clock skew tolerance is applied to the exp check.
func (c *JWTCodec) Verify(tokenStr string, now time.Time) (AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(c.clockSkew),
		jwt.WithExpirationRequired(),
	)

	claims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return AccessClaims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return AccessClaims{}, ErrTokenSignatureInvalid
		default:
			return AccessClaims{}, ErrTokenMalformed
		}
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return AccessClaims{}, ErrTokenMalformed
	}
	role, _ := claims["role"].(string)
	if role == "" {
		return AccessClaims{}, ErrTokenMalformed
	}
	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return AccessClaims{}, ErrTokenMalformed
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return AccessClaims{}, ErrTokenMalformed
	}

	return AccessClaims{
		SubjectID: sub,
		Role:      role,
		IssuedAt:  iat.Time,
		ExpiresAt: exp.Time,
	}, nil
}
