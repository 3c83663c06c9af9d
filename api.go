// Package tumbler provides an ordered, fail-fast gating pipeline for byte
// transformation.
//
// A Pipeline holds a sequence of Conditions. Each condition pairs a reversible
// byte transform with a satisfaction predicate. Encrypt applies every
// condition's Forward in insertion order; Decrypt applies every Inverse in the
// SAME order, and each Inverse only runs once its condition reports Satisfied.
// Conditions are independent gates, not a cipher cascade, which is why decrypt
// does not unwind in reverse.
//
// # Conditions
//
// Built-in gating conditions leave the payload untouched and only gate:
//
//   - Time(d, clock): satisfied once the clock reaches construction time + d
//   - Location(allowed, observed): satisfied when both axes differ by < 0.01°
//   - Biometric(expected, observed): satisfied when the credential hashes match
//
// Conditions that scramble the payload plug into the same contract:
//
//   - Cipher(enc): always satisfied, transforms with an Encryptor
//   - Gated(gate, enc): one condition's gate with an Encryptor's transforms
//   - Passphrase(pass, salt): XChaCha20 keyed by Argon2id
//
// Because Decrypt inverts in insertion order, two scrambling conditions only
// round-trip if their transforms commute. Use at most one per pipeline.
//
// # Basic Usage
//
//	timeLock, _ := tumbler.Time(10*time.Second, nil)
//	bio, _ := tumbler.Biometric("hash123", observedHash)
//
//	p := tumbler.New().
//	    Add(timeLock).
//	    Add(bio)
//
//	sealed, _ := p.Encrypt(ctx, []byte("hello"))
//
//	plain, err := p.Decrypt(ctx, sealed)
//	if errors.Is(err, tumbler.ErrConditionNotSatisfied) {
//	    var step *tumbler.StepError
//	    errors.As(err, &step) // step.Index, step.Kind name the closed gate
//	}
//
// # Failure Semantics
//
// Decrypt is all-or-nothing. The first unsatisfied condition fails the call
// with a *StepError wrapping ErrConditionNotSatisfied; later conditions are
// neither checked nor inverted and no partial output is returned. The
// pipeline never retries. Callers that want to wait poll Ready, or use
// Await with a context deadline, before calling Decrypt again.
//
// # Manifests and Envelopes
//
// Describable conditions can be recorded in a Manifest and rebuilt with Build,
// given fresh Observations (clock, position, credential, passphrase). Seal and
// Open pack the manifest next to the payload so the decrypt side replays the
// exact sequence used to seal. Codecs are available as subpackages:
//
//   - json - JSON encoding (application/json)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
//   - xml - XML encoding (application/xml)
//
// Third-party condition kinds become buildable by calling Register.
//
// # Observability
//
// Pipelines emit capitan signals around every fold (SignalEncryptStart,
// SignalDecryptComplete, SignalGateRejected, ...). An Observer attached with
// WithObserver receives per-step outcomes; the metrics subpackage exports them
// to Prometheus.
package tumbler
