package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// phcVersion is argon2.Version (0x13).
const phcVersion = 19

var phcB64 = base64.RawStdEncoding

// Hash derives an Argon2id key from password and returns it in PHC form:
// $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<key_b64>
func (c Config) Hash(password string) (string, error) {
	if err := c.Validate(password); err != nil {
		return "", err
	}

	salt := make([]byte, c.Params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		c.Params.Iterations,
		c.Params.MemoryKiB,
		c.Params.Parallelism,
		c.Params.KeyLength,
	)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		phcVersion,
		c.Params.MemoryKiB, c.Params.Iterations, c.Params.Parallelism,
		phcB64.EncodeToString(salt), phcB64.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash. (false, nil) is a
// clean mismatch; ErrInvalidHash covers malformed or unsupported encodings.
// Stored hashes are still untrusted input here: a hash whose parameters far
// exceed the configured ceiling is refused rather than computed.
func (c Config) Verify(encodedHash, password string) (bool, error) {
	parsed, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}

	if !parsed.params.sane(c.Params) {
		return false, ErrInvalidHash
	}

	key := argon2.IDKey(
		[]byte(password),
		parsed.salt,
		parsed.params.Iterations,
		parsed.params.MemoryKiB,
		parsed.params.Parallelism,
		uint32(len(parsed.key)), // #nosec G115 -- key length bounded by sane()
	)

	return subtle.ConstantTimeCompare(key, parsed.key) == 1, nil
}

// sane bounds parsed parameters against the configured ceiling. Smaller,
// older hashes still verify; anything wildly above the ceiling is refused.
func (p Argon2idParams) sane(limit Argon2idParams) bool {
	switch {
	case p.MemoryKiB > limit.MemoryKiB*2,
		p.Iterations > limit.Iterations*2,
		p.Parallelism > limit.Parallelism*2,
		p.SaltLength < 8, p.SaltLength > 64,
		p.KeyLength < 16, p.KeyLength > 128:
		return false
	}
	return true
}

type phcHash struct {
	params Argon2idParams
	salt   []byte
	key    []byte
}

// parsePHC strictly decodes $argon2id$v=19$m=..,t=..,p=..$salt$key.
func parsePHC(encoded string) (phcHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return phcHash{}, ErrInvalidHash
	}
	if parts[2] != fmt.Sprintf("v=%d", phcVersion) {
		return phcHash{}, ErrInvalidHash
	}

	var mem, it, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &it, &par); err != nil {
		return phcHash{}, ErrInvalidHash
	}
	if mem == 0 || it == 0 || par == 0 || par > 255 {
		return phcHash{}, ErrInvalidHash
	}

	salt, err := phcB64.DecodeString(parts[4])
	if err != nil {
		return phcHash{}, ErrInvalidHash
	}
	key, err := phcB64.DecodeString(parts[5])
	if err != nil {
		return phcHash{}, ErrInvalidHash
	}

	return phcHash{
		params: Argon2idParams{
			MemoryKiB:   mem,
			Iterations:  it,
			Parallelism: uint8(par),
			SaltLength:  uint32(len(salt)), // #nosec G115 -- bounded by sane()
			KeyLength:   uint32(len(key)),  // #nosec G115 -- bounded by sane()
		},
		salt: salt,
		key:  key,
	}, nil
}
