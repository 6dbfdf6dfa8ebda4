package account

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hash algorithm names accepted by NewHasher
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// ErrUnknownAlgorithm is returned by NewHasher for an unsupported algorithm name
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash produces an encoded hash of the password.
	Hash(password string) (string, error)

	// Verify returns (true, nil) on match, (false, nil) on mismatch, or an
	// error if the stored hash cannot be parsed.
	Verify(password, hash string) (bool, error)

	// NeedsUpgrade reports whether a stored hash was produced by another
	// algorithm or with weaker parameters than the hasher's own.
	NeedsUpgrade(hash string) bool
}

// HasherConfig selects and tunes the password hasher
type HasherConfig struct {
	Algorithm  string `mapstructure:"algorithm"`
	BcryptCost int    `mapstructure:"bcrypt_cost"`
}

// DefaultHasherConfig returns bcrypt at the library default cost
func DefaultHasherConfig() HasherConfig {
	return HasherConfig{
		Algorithm:  AlgorithmBcrypt,
		BcryptCost: bcrypt.DefaultCost,
	}
}

// NewHasher builds the hasher named by cfg.Algorithm
func NewHasher(cfg HasherConfig) (PasswordHasher, error) {
	switch cfg.Algorithm {
	case "", AlgorithmBcrypt:
		return NewBcryptHasher(cfg.BcryptCost), nil
	case AlgorithmArgon2id:
		return NewArgon2idHasher(DefaultArgon2Params()), nil
	default:
		return nil, oops.Code("HASHER_UNKNOWN").With("algorithm", cfg.Algorithm).Wrap(ErrUnknownAlgorithm)
	}
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

func isArgon2id(hash string) bool {
	return strings.HasPrefix(hash, "$argon2id$")
}

// BcryptHasher implements PasswordHasher using bcrypt. It can still verify
// argon2id hashes so a switch of algorithm upgrades accounts on next login.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt hasher; out-of-range costs use the default
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", oops.Code("HASH_FAILED").With("algorithm", AlgorithmBcrypt).Wrap(err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	if isArgon2id(hash) {
		return verifyArgon2id(password, hash)
	}
	return verifyBcrypt(password, hash)
}

func (h *BcryptHasher) NeedsUpgrade(hash string) bool {
	if !isBcrypt(hash) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost < h.cost
}

func verifyBcrypt(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, oops.Code("INVALID_HASH").With("algorithm", AlgorithmBcrypt).Wrap(err)
	}
	return true, nil
}

// Argon2Params tunes argon2id
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen int
	KeyLen  uint32
}

// DefaultArgon2Params returns the OWASP-recommended argon2id parameters
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		SaltLen: 16,
		KeyLen:  32,
	}
}

// Argon2idHasher implements PasswordHasher using argon2id. It verifies
// bcrypt hashes too.
type Argon2idHasher struct {
	params Argon2Params
}

// NewArgon2idHasher creates an argon2id hasher
func NewArgon2idHasher(params Argon2Params) *Argon2idHasher {
	return &Argon2idHasher{params: params}
}

func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("HASH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	// PHC string format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
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

func (h *Argon2idHasher) Verify(password, hash string) (bool, error) {
	if isBcrypt(hash) {
		return verifyBcrypt(password, hash)
	}
	return verifyArgon2id(password, hash)
}

func (h *Argon2idHasher) NeedsUpgrade(hash string) bool {
	if !isArgon2id(hash) {
		return true
	}
	p, _, _, err := parseArgon2id(hash)
	if err != nil {
		return true
	}
	return p.Memory < h.params.Memory || p.Time < h.params.Time || p.Threads < h.params.Threads
}

func parseArgon2id(hash string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, oops.Code("INVALID_HASH").Errorf("invalid argon2id hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, oops.Code("INVALID_HASH").Wrap(err)
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &threads); err != nil {
		return p, nil, nil, oops.Code("INVALID_HASH").Wrap(err)
	}
	if threads == 0 || threads > 255 {
		return p, nil, nil, oops.Code("INVALID_HASH").Errorf("threads value %d out of range", threads)
	}
	p.Threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, oops.Code("INVALID_HASH").Wrap(err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, oops.Code("INVALID_HASH").Wrap(err)
	}
	if len(key) == 0 || len(key) > 1<<10 {
		return p, nil, nil, oops.Code("INVALID_HASH").Errorf("invalid key length %d", len(key))
	}
	p.SaltLen = len(salt)
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}

func verifyArgon2id(password, hash string) (bool, error) {
	p, salt, expected, err := parseArgon2id(hash)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
