package password

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validate checks password against the configured policy. Length is counted
// in runes, not bytes.
func (c Config) Validate(password string) error {
	n := utf8.RuneCountInString(password)
	if n < c.Policy.MinLength {
		return ErrPasswordTooShort
	}
	if n > c.Policy.MaxLength {
		return ErrPasswordTooLong
	}
	if c.Policy.RejectVeryWeak && looksVeryWeak(password) {
		return ErrWeakPassword
	}
	return nil
}

// trivialPasswords are rejected outright. This is a short denylist, not a
// strength estimator.
var trivialPasswords = map[string]struct{}{
	"password":    {},
	"password123": {},
	"123456":      {},
	"123456789":   {},
	"qwerty":      {},
	"qwerty123":   {},
	"11111111":    {},
}

func looksVeryWeak(pw string) bool {
	s := strings.TrimSpace(pw)
	if s == "" {
		return true
	}

	if _, ok := trivialPasswords[strings.ToLower(s)]; ok {
		return true
	}

	runes := []rune(s)

	// A single repeated character never passes.
	uniform := true
	for _, r := range runes[1:] {
		if r != runes[0] {
			uniform = false
			break
		}
	}
	if uniform {
		return true
	}

	// Short all-digit strings are PIN-like.
	digitsOnly := true
	for _, r := range runes {
		if !unicode.IsDigit(r) {
			digitsOnly = false
			break
		}
	}
	return digitsOnly && len(runes) < 12
}
