package tumbler

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Cipher errors.
var (
	ErrCiphertextShort  = errors.New("ciphertext too short")
	ErrDecryptionFailed = errors.New("decryption failed")
)

// CipherXChaCha20 is the algorithm name recorded for passphrase conditions.
const CipherXChaCha20 = "xchacha20"

// SaltSize is the length of salts produced by NewSalt.
const SaltSize = 16

// Encryptor handles encryption/decryption operations.
type Encryptor interface {
	// Encrypt encrypts plaintext and returns ciphertext.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext and returns plaintext.
	Decrypt(ciphertext []byte) ([]byte, error)
}

// aeadEncryptor seals with any AEAD, prepending a random nonce.
type aeadEncryptor struct {
	aead cipher.AEAD
}

// AES returns an AES-GCM encryptor.
// Key must be 16, 24, or 32 bytes for AES-128, AES-192, or AES-256.
func AES(key []byte) (Encryptor, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return &aeadEncryptor{aead: aead}, nil
}

// XChaCha20 returns an XChaCha20-Poly1305 encryptor. Key must be 32 bytes.
func XChaCha20(key []byte) (Encryptor, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return &aeadEncryptor{aead: aead}, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, fmt.Errorf("%w: must be 16, 24, or 32 bytes, got %d", ErrInvalidKey, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (e *aeadEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	return seal(e.aead, plaintext)
}

func (e *aeadEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	return open(e.aead, ciphertext)
}

func seal(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func open(aead cipher.AEAD, ciphertext []byte) ([]byte, error) {
	n := aead.NonceSize()
	if len(ciphertext) < n {
		return nil, ErrCiphertextShort
	}
	plaintext, err := aead.Open(nil, ciphertext[:n], ciphertext[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// keyWrapEncryptor wraps a fresh XChaCha20 data key per message with an
// AES-GCM master key.
type keyWrapEncryptor struct {
	master cipher.AEAD
}

// KeyWrap returns an encryptor that seals each message under a random data
// key and wraps that key with masterKey.
// Master key must be 16, 24, or 32 bytes.
func KeyWrap(masterKey []byte) (Encryptor, error) {
	master, err := newGCM(masterKey)
	if err != nil {
		return nil, err
	}
	return &keyWrapEncryptor{master: master}, nil
}

func (e *keyWrapEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	dataKey := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(rand.Reader, dataKey); err != nil {
		return nil, err
	}
	data, err := chacha20poly1305.NewX(dataKey)
	if err != nil {
		return nil, err
	}

	wrappedKey, err := seal(e.master, dataKey)
	if err != nil {
		return nil, err
	}
	body, err := seal(data, plaintext)
	if err != nil {
		return nil, err
	}

	// Format: [1 byte wrapped key len][wrapped key][body]
	// The wrapped key is nonce + 32-byte key + tag, well under 255 bytes.
	result := make([]byte, 0, 1+len(wrappedKey)+len(body))
	result = append(result, byte(len(wrappedKey)))
	result = append(result, wrappedKey...)
	return append(result, body...), nil
}

func (e *keyWrapEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < 1 {
		return nil, ErrCiphertextShort
	}
	keyLen := int(ciphertext[0])
	if len(ciphertext) < 1+keyLen {
		return nil, ErrCiphertextShort
	}

	dataKey, err := open(e.master, ciphertext[1:1+keyLen])
	if err != nil {
		return nil, fmt.Errorf("data key: %w", err)
	}
	data, err := chacha20poly1305.NewX(dataKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return open(data, ciphertext[1+keyLen:])
}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey stretches a passphrase into a 32-byte key with Argon2id.
func DeriveKey(passphrase, salt []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: empty passphrase", ErrInvalidKey)
	}
	if len(salt) < 8 {
		return nil, fmt.Errorf("%w: salt must be at least 8 bytes, got %d", ErrInvalidKey, len(salt))
	}
	p := DefaultArgon2Params()
	return argon2.IDKey(passphrase, salt, p.Time, p.Memory, p.Threads, chacha20poly1305.KeySize), nil
}

// cipherCondition is always satisfied and scrambles the payload.
type cipherCondition struct {
	enc  Encryptor
	spec *ConditionSpec
}

// Cipher returns a condition whose transforms are enc's Encrypt and Decrypt.
// It is always satisfied; failures surface as ErrMalformedInput.
func Cipher(enc Encryptor) Condition {
	return &cipherCondition{enc: enc}
}

// Passphrase returns an XChaCha20 cipher condition keyed by Argon2id over
// passphrase and salt. It is describable, so a manifest can rebuild it when
// the passphrase is supplied again.
func Passphrase(passphrase, salt []byte) (Condition, error) {
	key, err := DeriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	enc, err := XChaCha20(key)
	if err != nil {
		return nil, err
	}
	return &cipherCondition{
		enc:  enc,
		spec: &ConditionSpec{Kind: KindCipher, Algo: CipherXChaCha20, Salt: hex.EncodeToString(salt)},
	}, nil
}

func (c *cipherCondition) Satisfied() bool { return true }

func (c *cipherCondition) Forward(data []byte) ([]byte, error) {
	out, err := c.enc.Encrypt(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return out, nil
}

func (c *cipherCondition) Inverse(data []byte) ([]byte, error) {
	out, err := c.enc.Decrypt(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return out, nil
}

// Describe implements Describer. Ad-hoc Cipher conditions report KindCustom
// because their key material cannot be recorded.
func (c *cipherCondition) Describe() ConditionSpec {
	if c.spec == nil {
		return ConditionSpec{Kind: KindCustom}
	}
	return *c.spec
}

// gatedCondition combines one condition's gate with an encryptor's transforms.
type gatedCondition struct {
	gate Condition
	enc  Encryptor
}

// Gated returns a condition that is satisfied when gate is and that wraps
// gate's own transforms in enc. Forward runs gate then enc; Inverse runs enc
// then gate, so the pair is a true inverse.
func Gated(gate Condition, enc Encryptor) Condition {
	return &gatedCondition{gate: gate, enc: enc}
}

func (c *gatedCondition) Satisfied() bool { return c.gate.Satisfied() }

func (c *gatedCondition) Forward(data []byte) ([]byte, error) {
	inner, err := c.gate.Forward(data)
	if err != nil {
		return nil, err
	}
	out, err := c.enc.Encrypt(inner)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return out, nil
}

func (c *gatedCondition) Inverse(data []byte) ([]byte, error) {
	if !c.gate.Satisfied() {
		return nil, ErrConditionNotSatisfied
	}
	inner, err := c.enc.Decrypt(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return c.gate.Inverse(inner)
}
