package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidHashFormat   = errors.New("invalid encoded hash format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// HashParams configures the Argon2id hashing parameters.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashParams returns recommended Argon2id parameters for password hashing.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// PasswordHasher derives and checks Argon2id password hashes.
type PasswordHasher struct {
	params HashParams
	// dummy is compared against when no stored hash exists so that a login
	// for an unknown email costs the same as one with a wrong password.
	dummy string
}

// NewPasswordHasher creates a PasswordHasher using params for new hashes.
func NewPasswordHasher(params HashParams) (*PasswordHasher, error) {
	h := &PasswordHasher{params: params}

	dummy, err := h.Hash("spendtrack-dummy-password")
	if err != nil {
		return nil, err
	}
	h.dummy = dummy

	return h, nil
}

// Hash hashes a password with a fresh random salt.
// Returns the hash encoded in PHC string format.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	// $argon2id$v=19$m=65536,t=3,p=2$<base64-salt>$<base64-hash>
	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// Verify checks whether a password matches the given Argon2id encoded hash.
// The parameters stored in the hash are used, not the hasher's own.
func (h *PasswordHasher) Verify(password, encodedHash string) (bool, error) {
	params, salt, hash, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	return subtle.ConstantTimeCompare(hash, candidate) == 1, nil
}

// VerifyDummy burns the same work as Verify without a real hash. It always
// reports a mismatch.
func (h *PasswordHasher) VerifyDummy(password string) {
	_, _ = h.Verify(password, h.dummy)
}

// Upper bounds on the costs read back from a stored hash. Zero rounds or
// lanes are rejected too; argon2 panics on them.
const (
	maxStoredMemory     = 1 << 20 // KiB
	maxStoredIterations = 16
	maxStoredKeyLength  = 128
)

// decodeHash parses "$argon2id$v=19$m=..,t=..,p=..$<salt>$<key>".
func decodeHash(encodedHash string) (HashParams, []byte, []byte, error) {
	rest, ok := strings.CutPrefix(encodedHash, "$argon2id$")
	if !ok {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	fields := strings.Split(rest, "$")
	if len(fields) != 4 {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}

	v, ok := strings.CutPrefix(fields[0], "v=")
	version, err := strconv.Atoi(v)
	if !ok || err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	if version != argon2.Version {
		return HashParams{}, nil, nil, ErrIncompatibleVersion
	}

	params, err := parseCost(fields[1])
	if err != nil {
		return HashParams{}, nil, nil, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[2])
	if err != nil || len(salt) == 0 {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	key, err := base64.RawStdEncoding.DecodeString(fields[3])
	if err != nil || len(key) == 0 || len(key) > maxStoredKeyLength {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))

	return params, salt, key, nil
}

// parseCost reads the "m=..,t=..,p=.." segment. Each key must appear once.
func parseCost(segment string) (HashParams, error) {
	var params HashParams
	seen := make(map[string]bool, 3)

	for _, kv := range strings.Split(segment, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || seen[k] {
			return HashParams{}, ErrInvalidHashFormat
		}
		seen[k] = true

		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			return HashParams{}, ErrInvalidHashFormat
		}

		switch k {
		case "m":
			if n > maxStoredMemory {
				return HashParams{}, ErrInvalidHashFormat
			}
			params.Memory = uint32(n)
		case "t":
			if n > maxStoredIterations {
				return HashParams{}, ErrInvalidHashFormat
			}
			params.Iterations = uint32(n)
		case "p":
			if n > 255 {
				return HashParams{}, ErrInvalidHashFormat
			}
			params.Parallelism = uint8(n)
		default:
			return HashParams{}, ErrInvalidHashFormat
		}
	}

	if len(seen) != 3 {
		return HashParams{}, ErrInvalidHashFormat
	}
	return params, nil
}
