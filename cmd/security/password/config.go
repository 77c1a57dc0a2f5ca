package password

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Argon2idParams controls Argon2id hashing cost. MemoryKiB is in KiB, as
// argon2.IDKey expects.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy controls password validation.
type Policy struct {
	MinLength int
	MaxLength int
	// Enables the minimal weak-pattern rejection in Validate.
	RejectVeryWeak bool
}

// Config is the single configuration surface for this package.
type Config struct {
	Params Argon2idParams
	Policy Policy
}

// DefaultConfig returns a conservative baseline for interactive sign-in.
// Parallelism follows the host CPU count, clamped to [1..4] so cost stays
// predictable in containers.
func DefaultConfig() Config {
	threads := runtime.NumCPU()
	if threads < 1 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024, // 64 MiB
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped above
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{
			MinLength:      12,
			MaxLength:      256,
			RejectVeryWeak: false,
		},
	}
}

// FromEnv starts from DefaultConfig and applies any of:
//
//	GRAVITY_PASSWORD_MIN_LEN, GRAVITY_PASSWORD_MAX_LEN,
//	GRAVITY_PASSWORD_REJECT_VERY_WEAK,
//	GRAVITY_ARGON2_MEMORY_KIB, GRAVITY_ARGON2_ITERATIONS,
//	GRAVITY_ARGON2_PARALLELISM, GRAVITY_ARGON2_SALT_LEN,
//	GRAVITY_ARGON2_KEY_LEN
//
// Out-of-range or unparsable values are hard errors rather than silent
// fallbacks: a typo in hashing cost should fail startup loudly.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	intKnobs := []struct {
		key      string
		min, max int
		dst      *int
	}{
		{"GRAVITY_PASSWORD_MIN_LEN", 1, 1024, &cfg.Policy.MinLength},
		{"GRAVITY_PASSWORD_MAX_LEN", 1, 4096, &cfg.Policy.MaxLength},
	}
	for _, k := range intKnobs {
		v, ok := os.LookupEnv(k.key)
		if !ok {
			continue
		}
		n, err := parseBoundedInt(v, k.min, k.max)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", k.key, err)
		}
		*k.dst = n
	}

	if v, ok := os.LookupEnv("GRAVITY_PASSWORD_REJECT_VERY_WEAK"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("GRAVITY_PASSWORD_REJECT_VERY_WEAK: invalid boolean")
		}
		cfg.Policy.RejectVeryWeak = b
	}

	u32Knobs := []struct {
		key      string
		min, max uint32
		dst      *uint32
	}{
		{"GRAVITY_ARGON2_MEMORY_KIB", 8 * 1024, 1024 * 1024, &cfg.Params.MemoryKiB},
		{"GRAVITY_ARGON2_ITERATIONS", 1, 20, &cfg.Params.Iterations},
		{"GRAVITY_ARGON2_SALT_LEN", 8, 64, &cfg.Params.SaltLength},
		{"GRAVITY_ARGON2_KEY_LEN", 16, 64, &cfg.Params.KeyLength},
	}
	for _, k := range u32Knobs {
		v, ok := os.LookupEnv(k.key)
		if !ok {
			continue
		}
		u, err := parseBoundedUint32(v, k.min, k.max)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", k.key, err)
		}
		*k.dst = u
	}

	if v, ok := os.LookupEnv("GRAVITY_ARGON2_PARALLELISM"); ok {
		u, err := parseBoundedUint32(v, 1, 64)
		if err != nil {
			return Config{}, fmt.Errorf("GRAVITY_ARGON2_PARALLELISM: %w", err)
		}
		cfg.Params.Parallelism = uint8(u) // #nosec G115 -- bounded to [1..64]
	}

	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf("password policy invalid: min_len(%d) > max_len(%d)",
			cfg.Policy.MinLength, cfg.Policy.MaxLength)
	}
	return cfg, nil
}

func parseBoundedInt(s string, minVal, maxVal int) (int, error) {
	i64, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}
	if n := int(i64); n >= minVal && n <= maxVal {
		return n, nil
	}
	return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
}

func parseBoundedUint32(s string, minVal, maxVal uint32) (uint32, error) {
	u64, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}
	if u := uint32(u64); u >= minVal && u <= maxVal {
		return u, nil
	}
	return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
}
