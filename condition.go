package tumbler

import (
	"bytes"
	"time"
)

// Condition is a single unlock gate in a Pipeline.
//
// Forward runs on encrypt. Inverse runs on decrypt and is only valid while
// Satisfied reports true; an unsatisfied condition returns an error wrapping
// ErrConditionNotSatisfied from Inverse instead of data.
type Condition interface {
	// Forward transforms data on the encrypt path.
	Forward(data []byte) ([]byte, error)

	// Inverse undoes Forward for the same condition instance.
	Inverse(data []byte) ([]byte, error)

	// Satisfied reports whether the condition currently permits Inverse.
	// It is evaluated on every call and never memoized.
	Satisfied() bool
}

// Describer is implemented by conditions that can be persisted in a Manifest.
type Describer interface {
	Describe() ConditionSpec
}

// Kind identifies a condition variant in manifests, errors and signals.
type Kind string

const (
	// KindTime gates on wall-clock time reaching an unlock instant.
	KindTime Kind = "time"

	// KindLocation gates on an observed coordinate matching an allowed one.
	KindLocation Kind = "location"

	// KindBiometric gates on an observed credential hash matching the expected one.
	KindBiometric Kind = "biometric"

	// KindCipher scrambles the payload with a keyed cipher.
	KindCipher Kind = "cipher"

	// KindCustom is reported for conditions that do not implement Describer.
	KindCustom Kind = "custom"
)

// validKinds contains all kinds accepted in a manifest.
var validKinds = map[Kind]bool{
	KindTime:      true,
	KindLocation:  true,
	KindBiometric: true,
	KindCipher:    true,
}

// IsValidKind returns true if the kind is a known built-in condition kind.
func IsValidKind(k Kind) bool {
	return validKinds[k]
}

// kindOf reports the kind of c, falling back to KindCustom.
func kindOf(c Condition) Kind {
	if d, ok := c.(Describer); ok {
		if k := d.Describe().Kind; k != "" {
			return k
		}
	}
	return KindCustom
}

// Clock supplies the current time to time-based conditions.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return systemClock{}
}

// identity is the Forward/Inverse body shared by the gating-only conditions.
// The input is copied so callers never alias pipeline output.
func identity(data []byte) []byte {
	return bytes.Clone(data)
}
