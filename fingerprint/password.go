package fingerprint

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2idParams controls the memory-hard KDF used for password hashing,
// grounded on biscuit's hashing::argon2id module (DEFAULT_MEMORY_COST_KIB,
// DEFAULT_TIME_COST, DEFAULT_PARALLELISM, DEFAULT_OUTPUT_LEN).
type Argon2idParams struct {
	TimeCost    uint32
	MemoryKiB   uint32
	Parallelism uint8
	KeyLen      uint32
	SaltLen     uint32
}

// DefaultArgon2idParams are conservative interactive-login parameters.
func DefaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		TimeCost:    1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		KeyLen:      32,
		SaltLen:     16,
	}
}

// encoded format: argon2id$v=19$m=<mem>,t=<time>,p=<par>$<salt-b64>$<hash-b64>
const argon2idPrefix = "argon2id$v=19$"

// HashPassword derives a self-describing encoded hash (salt + parameters +
// digest) from secret using DefaultArgon2idParams.
func HashPassword(secret string) (string, error) {
	return HashPasswordWithParams(secret, DefaultArgon2idParams())
}

// HashPasswordWithParams derives a self-describing encoded hash using the
// given parameters.
func HashPasswordWithParams(secret string, params Argon2idParams) (string, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hashWithSalt(secret, salt, params), nil
}

func hashWithSalt(secret string, salt []byte, params Argon2idParams) string {
	digest := argon2.IDKey([]byte(secret), salt, params.TimeCost, params.MemoryKiB, params.Parallelism, params.KeyLen)
	return fmt.Sprintf("%sm=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix,
		params.MemoryKiB, params.TimeCost, params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)
}

// VerifyPassword reports whether secret matches the encoded hash previously
// produced by HashPassword/HashPasswordWithParams.
func VerifyPassword(secret, encoded string) (bool, error) {
	if !strings.HasPrefix(encoded, argon2idPrefix) {
		return false, fmt.Errorf("unrecognized encoding")
	}
	rest := strings.TrimPrefix(encoded, argon2idPrefix)
	parts := strings.Split(rest, "$")
	if len(parts) != 3 {
		return false, fmt.Errorf("malformed encoded hash")
	}

	var mem, timeCost uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[0], "m=%d,t=%d,p=%d", &mem, &timeCost, &par); err != nil {
		return false, fmt.Errorf("malformed parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("malformed salt: %w", err)
	}
	wantDigest, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false, fmt.Errorf("malformed digest: %w", err)
	}

	gotDigest := argon2.IDKey([]byte(secret), salt, timeCost, mem, par, uint32(len(wantDigest)))
	return subtle.ConstantTimeCompare(gotDigest, wantDigest) == 1, nil
}
