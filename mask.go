package tumbler

import (
	"fmt"
	"strconv"
	"strings"
)

// Masker hides sensitive parts of a value for display.
type Masker interface {
	// Mask applies masking to the value.
	Mask(value string) string
}

// hashMasker masks credential hashes: 3f9a1c0b77... -> 3f9a1c**********
type hashMasker struct {
	keep int
}

// HashMasker returns a masker for credential hashes and salts.
// Preserves the first keep characters, masks the rest.
func HashMasker(keep int) Masker {
	return &hashMasker{keep: keep}
}

func (m *hashMasker) Mask(value string) string {
	if len(value) <= m.keep*2 {
		return strings.Repeat("*", len(value))
	}
	return value[:m.keep] + strings.Repeat("*", len(value)-m.keep)
}

// coordinateMasker masks "lat,lon" pairs: 40.7128,-74.0060 -> 40.7x,-74.0x
type coordinateMasker struct{}

// CoordinateMasker returns a masker for coordinates.
// Preserves one decimal place (~11 km), masks the remaining precision.
func CoordinateMasker() Masker {
	return &coordinateMasker{}
}

func (m *coordinateMasker) Mask(value string) string {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return strings.Repeat("*", len(value))
	}
	out := make([]string, 2)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return strings.Repeat("*", len(value))
		}
		out[i] = maskDegrees(f)
	}
	return out[0] + "," + out[1]
}

// maskDegrees truncates toward zero to one decimal place and marks the cut.
func maskDegrees(f float64) string {
	s := strconv.FormatFloat(f, 'f', 6, 64)
	dot := strings.IndexByte(s, '.')
	return s[:dot+2] + "x"
}

// Summarize renders spec as one masked line suitable for terminals and logs.
// Credential hashes, salts and exact coordinates are never shown in full.
func Summarize(spec ConditionSpec) string {
	switch spec.Kind {
	case KindTime:
		if spec.UnlockAt == nil {
			return "time unlock_at=?"
		}
		return "time unlock_at=" + spec.UnlockAt.UTC().Format("2006-01-02T15:04:05Z")
	case KindLocation:
		if spec.Allowed == nil {
			return "location allowed=?"
		}
		return "location allowed=" + CoordinateMasker().Mask(spec.Allowed.String())
	case KindBiometric:
		algo := spec.HashAlgo
		if algo == "" {
			algo = HashSHA256
		}
		return fmt.Sprintf("biometric %s=%s", algo, HashMasker(6).Mask(spec.ExpectedHash))
	case KindCipher:
		return fmt.Sprintf("cipher %s salt=%s", spec.Algo, HashMasker(4).Mask(spec.Salt))
	default:
		return string(spec.Kind)
	}
}
