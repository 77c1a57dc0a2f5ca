package session

import (
	"crypto/rand"
	"encoding/base64"

	"gravity/cmd/security/token"
)

func newOpaqueRefreshSecret(nBytes int) (plain string, hashHex string, err error) {
	b := make([]byte, nBytes)
	if _, err = rand.Read(b); err != nil {
		return "", "", err
	}

	// URL-safe, no padding.
	plain = base64.RawURLEncoding.EncodeToString(b)

	hashHex = token.HashRefreshSecretHex(plain) // 64 hex chars

	return plain, hashHex, nil
}

func hashRefreshSecretHex(s string) string {
	return token.HashRefreshSecretHex(s)
}
