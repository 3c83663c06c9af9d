package tumbler

import (
	"crypto/subtle"
	"fmt"
)

// BiometricCondition gates decryption on a credential hash match.
// Both hashes are opaque strings; sourcing the observed value is the caller's job.
type BiometricCondition struct {
	expected string
	observed string
	algo     HashAlgo
}

// Biometric returns a condition satisfied when observed equals expected.
// An empty expected hash is rejected with ErrInvalidCondition: it would equal
// the empty observation an opener without a credential supplies, leaving the
// gate open to anyone. Any non-empty string is accepted as an opaque hash.
func Biometric(expected, observed string) (*BiometricCondition, error) {
	if expected == "" {
		return nil, fmt.Errorf("%w: empty expected credential hash", ErrInvalidCondition)
	}
	return &BiometricCondition{expected: expected, observed: observed}, nil
}

// WithHashAlgo records which hasher produced the credential hashes, so a
// manifest can tell the opener how to hash a fresh sample.
func (c *BiometricCondition) WithHashAlgo(algo HashAlgo) *BiometricCondition {
	return &BiometricCondition{expected: c.expected, observed: c.observed, algo: algo}
}

// Satisfied reports whether the observed hash equals the expected hash.
func (c *BiometricCondition) Satisfied() bool {
	return subtle.ConstantTimeCompare([]byte(c.expected), []byte(c.observed)) == 1
}

func (c *BiometricCondition) Forward(data []byte) ([]byte, error) {
	return identity(data), nil
}

func (c *BiometricCondition) Inverse(data []byte) ([]byte, error) {
	if !c.Satisfied() {
		return nil, fmt.Errorf("%w: credential mismatch", ErrConditionNotSatisfied)
	}
	return identity(data), nil
}

// Describe implements Describer.
func (c *BiometricCondition) Describe() ConditionSpec {
	return ConditionSpec{Kind: KindBiometric, ExpectedHash: c.expected, HashAlgo: c.algo}
}
