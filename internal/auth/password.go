// AngelaMos | 2026
// password.go

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/carterperez-dev/templates/member-portal/internal/config"
)

var (
	ErrEmptyPassword = errors.New("password cannot be empty")
	ErrInvalidHash   = errors.New("invalid password hash")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns (false, nil) on mismatch and an error only for a
	// malformed hash.
	Verify(password, encoded string) (bool, error)
	VerifyTimingSafe(password, encoded string) bool
}

type Argon2Params struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:  64 * 1024,
		Time:    1,
		Threads: 4,
		SaltLen: 16,
		KeyLen:  32,
	}
}

// ParamsFromConfig overlays the configured cost on the defaults.
func ParamsFromConfig(cfg config.PasswordConfig) Argon2Params {
	p := DefaultArgon2Params()
	if cfg.Memory > 0 {
		p.Memory = cfg.Memory
	}
	if cfg.Time > 0 {
		p.Time = cfg.Time
	}
	if cfg.Threads > 0 {
		p.Threads = cfg.Threads
	}
	return p
}

type Argon2idHasher struct {
	params Argon2Params

	dummyOnce sync.Once
	dummy     string
}

func NewArgon2idHasher(params Argon2Params) *Argon2idHasher {
	return &Argon2idHasher{params: params}
}

// Hash encodes as $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Time,
		h.params.Memory,
		h.params.Threads,
		h.params.KeyLen,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(password, encoded string) (bool, error) {
	p, salt, expected, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(password),
		salt,
		p.Time,
		p.Memory,
		p.Threads,
		p.KeyLen,
	)

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// VerifyTimingSafe never short-circuits: a missing or malformed hash is
// replaced by a dummy of the same cost, and the result forced to false.
func (h *Argon2idHasher) VerifyTimingSafe(password, encoded string) bool {
	usable := true
	if _, _, _, err := decodeHash(encoded); err != nil {
		encoded = h.dummyHash()
		usable = false
	}

	ok, err := h.Verify(password, encoded)
	return usable && err == nil && ok
}

func (h *Argon2idHasher) dummyHash() string {
	h.dummyOnce.Do(func() {
		encoded, err := h.Hash("timing-safe-dummy-password")
		if err != nil {
			panic(fmt.Sprintf("argon2id dummy hash: %v", err))
		}
		h.dummy = encoded
	})
	return h.dummy
}

func decodeHash(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return p, nil, nil, fmt.Errorf("%w: format", ErrInvalidHash)
	}

	if parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf(
			"%w: unsupported algorithm %q",
			ErrInvalidHash,
			parts[1],
		)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: version: %w", ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf(
			"%w: version %d",
			ErrInvalidHash,
			version,
		)
	}

	var threads uint32
	if _, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&p.Memory,
		&p.Time,
		&threads,
	); err != nil {
		return p, nil, nil, fmt.Errorf("%w: params: %w", ErrInvalidHash, err)
	}
	if threads == 0 || threads > 255 || p.Time == 0 || p.Memory == 0 {
		return p, nil, nil, fmt.Errorf("%w: params out of range", ErrInvalidHash)
	}
	p.Threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %w", ErrInvalidHash, err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: key: %w", ErrInvalidHash, err)
	}

	if len(key) == 0 || len(key) > 1<<10 {
		return p, nil, nil, fmt.Errorf(
			"%w: key length %d",
			ErrInvalidHash,
			len(key),
		)
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))

	return p, salt, key, nil
}
