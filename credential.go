package tumbler

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/blake2b"
)

// HashAlgo represents a supported credential hashing algorithm.
type HashAlgo string

const (
	// HashSHA256 uses SHA-256 (fast, unsalted).
	HashSHA256 HashAlgo = "sha256"

	// HashSHA512 uses SHA-512 (fast, unsalted).
	HashSHA512 HashAlgo = "sha512"

	// HashBLAKE2b uses BLAKE2b-256, optionally keyed.
	HashBLAKE2b HashAlgo = "blake2b"

	// HashArgon2 uses Argon2id with a fixed salt (slow, deterministic per salt).
	HashArgon2 HashAlgo = "argon2"
)

// validHashAlgos contains all valid credential hash algorithms.
var validHashAlgos = map[HashAlgo]bool{
	HashSHA256:  true,
	HashSHA512:  true,
	HashBLAKE2b: true,
	HashArgon2:  true,
}

// IsValidHashAlgo returns true if the algorithm is a known hash algorithm.
func IsValidHashAlgo(algo HashAlgo) bool {
	return validHashAlgos[algo]
}

// Hasher turns a raw credential sample into the opaque hash compared by
// BiometricCondition. Hashers must be deterministic: the same sample always
// yields the same string, otherwise equality gating cannot work.
type Hasher interface {
	// Hash returns the hash of sample as a string.
	Hash(sample []byte) (string, error)
}

// Argon2Params configures Argon2id credential hashing.
type Argon2Params struct {
	Time    uint32 // Number of iterations
	Memory  uint32 // Memory usage in KiB
	Threads uint8  // Parallelism factor
	KeyLen  uint32 // Output key length
}

// DefaultArgon2Params returns recommended Argon2id parameters.
// Based on OWASP recommendations for password hashing.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024, // 64 MiB
		Threads: 4,
		KeyLen:  32,
	}
}

// argon2Hasher implements salted, deterministic Argon2id hashing.
type argon2Hasher struct {
	salt   []byte
	params Argon2Params
}

// Argon2Hasher returns an Argon2id hasher using salt for every sample.
// The salt must be at least 8 bytes.
func Argon2Hasher(salt []byte, params Argon2Params) (Hasher, error) {
	if len(salt) < 8 {
		return nil, fmt.Errorf("%w: argon2 salt must be at least 8 bytes, got %d", ErrInvalidKey, len(salt))
	}
	return &argon2Hasher{salt: append([]byte(nil), salt...), params: params}, nil
}

func (h *argon2Hasher) Hash(sample []byte) (string, error) {
	key := argon2.IDKey(sample, h.salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	// Encode as: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// blake2bHasher implements BLAKE2b-256 hashing.
type blake2bHasher struct {
	key []byte
}

// BLAKE2bHasher returns a BLAKE2b-256 hasher. A non-empty key (up to 64
// bytes) turns it into a MAC, binding hashes to a deployment secret.
func BLAKE2bHasher(key []byte) (Hasher, error) {
	if len(key) > blake2b.Size {
		return nil, fmt.Errorf("%w: blake2b key must be at most %d bytes, got %d", ErrInvalidKey, blake2b.Size, len(key))
	}
	return &blake2bHasher{key: append([]byte(nil), key...)}, nil
}

func (h *blake2bHasher) Hash(sample []byte) (string, error) {
	d, err := blake2b.New256(h.key)
	if err != nil {
		return "", fmt.Errorf("blake2b hash failed: %w", err)
	}
	d.Write(sample)
	return hex.EncodeToString(d.Sum(nil)), nil
}

// sha256Hasher implements SHA-256 hashing.
type sha256Hasher struct{}

// SHA256Hasher returns a SHA-256 hasher.
// The result is a hex-encoded 64-character string.
func SHA256Hasher() Hasher {
	return &sha256Hasher{}
}

func (h *sha256Hasher) Hash(sample []byte) (string, error) {
	sum := sha256.Sum256(sample)
	return hex.EncodeToString(sum[:]), nil
}

// sha512Hasher implements SHA-512 hashing.
type sha512Hasher struct{}

// SHA512Hasher returns a SHA-512 hasher.
// The result is a hex-encoded 128-character string.
func SHA512Hasher() Hasher {
	return &sha512Hasher{}
}

func (h *sha512Hasher) Hash(sample []byte) (string, error) {
	sum := sha512.Sum512(sample)
	return hex.EncodeToString(sum[:]), nil
}

// HasherFor returns the hasher for algo. salt is the Argon2 salt or the
// BLAKE2b key; it is ignored by the SHA hashers.
func HasherFor(algo HashAlgo, salt []byte) (Hasher, error) {
	switch algo {
	case HashSHA256, "":
		return SHA256Hasher(), nil
	case HashSHA512:
		return SHA512Hasher(), nil
	case HashBLAKE2b:
		return BLAKE2bHasher(salt)
	case HashArgon2:
		return Argon2Hasher(salt, DefaultArgon2Params())
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", algo)
	}
}
