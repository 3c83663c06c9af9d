package tumbler

import (
	"encoding/hex"
	"fmt"
	"sync"
)

// BuilderFunc constructs a condition from its manifest entry and the
// caller's observations.
type BuilderFunc func(spec ConditionSpec, obs Observations) (Condition, error)

var (
	registry   = builtinBuilders()
	registryMu sync.RWMutex
)

// Register installs a builder for kind, replacing any existing one.
// Use it to make third-party conditions buildable from manifests.
func Register(kind Kind, build BuilderFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = build
}

// Lookup returns the builder registered for kind.
func Lookup(kind Kind) (BuilderFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	build, ok := registry[kind]
	return build, ok
}

// Reset restores the registry to the built-in builders.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = builtinBuilders()
}

// builtinBuilders returns the default builder registry.
func builtinBuilders() map[Kind]BuilderFunc {
	return map[Kind]BuilderFunc{
		KindTime:      buildTime,
		KindLocation:  buildLocation,
		KindBiometric: buildBiometric,
		KindCipher:    buildCipher,
	}
}

func buildTime(spec ConditionSpec, obs Observations) (Condition, error) {
	if spec.UnlockAt == nil {
		return nil, newConfigError(ErrInvalidCondition, KindTime, "unlock_at")
	}
	return TimeAt(*spec.UnlockAt, obs.Clock), nil
}

func buildLocation(spec ConditionSpec, obs Observations) (Condition, error) {
	if spec.Allowed == nil {
		return nil, newConfigError(ErrInvalidCondition, KindLocation, "allowed")
	}
	if obs.Location == nil {
		return Unobserved(*spec.Allowed)
	}
	return Location(*spec.Allowed, *obs.Location)
}

func buildBiometric(spec ConditionSpec, obs Observations) (Condition, error) {
	if spec.HashAlgo != "" && !IsValidHashAlgo(spec.HashAlgo) {
		return nil, newConfigError(ErrInvalidCondition, KindBiometric, "hash_algo")
	}
	c, err := Biometric(spec.ExpectedHash, obs.Credential)
	if err != nil {
		return nil, err
	}
	return c.WithHashAlgo(spec.HashAlgo), nil
}

func buildCipher(spec ConditionSpec, obs Observations) (Condition, error) {
	if spec.Algo != CipherXChaCha20 {
		return nil, newConfigError(ErrInvalidCondition, KindCipher, "algo")
	}
	salt, err := hex.DecodeString(spec.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", newConfigError(ErrInvalidCondition, KindCipher, "salt"), err)
	}
	if len(obs.Passphrase) == 0 {
		return nil, newConfigError(ErrMissingObservation, KindCipher, "passphrase")
	}
	return Passphrase(obs.Passphrase, salt)
}
