package tumbler

import (
	"encoding/xml"
	"fmt"
	"time"
)

// ManifestVersion is the manifest format written by Describe.
const ManifestVersion = 1

// ConditionSpec is the persistable description of one condition.
// Only the fields relevant to Kind are set. Observed values (current
// position, presented credential, passphrase) are never recorded; they are
// supplied again through Observations when the manifest is built.
type ConditionSpec struct {
	Kind         Kind        `json:"kind" yaml:"kind" msgpack:"kind" bson:"kind" xml:"kind,attr"`
	UnlockAt     *time.Time  `json:"unlock_at,omitempty" yaml:"unlock_at,omitempty" msgpack:"unlock_at,omitempty" bson:"unlock_at,omitempty" xml:"unlock_at,omitempty"`
	Allowed      *Coordinate `json:"allowed,omitempty" yaml:"allowed,omitempty" msgpack:"allowed,omitempty" bson:"allowed,omitempty" xml:"allowed,omitempty"`
	ExpectedHash string      `json:"expected_hash,omitempty" yaml:"expected_hash,omitempty" msgpack:"expected_hash,omitempty" bson:"expected_hash,omitempty" xml:"expected_hash,omitempty"`
	HashAlgo     HashAlgo    `json:"hash_algo,omitempty" yaml:"hash_algo,omitempty" msgpack:"hash_algo,omitempty" bson:"hash_algo,omitempty" xml:"hash_algo,omitempty"`
	Algo         string      `json:"algo,omitempty" yaml:"algo,omitempty" msgpack:"algo,omitempty" bson:"algo,omitempty" xml:"algo,omitempty"`
	Salt         string      `json:"salt,omitempty" yaml:"salt,omitempty" msgpack:"salt,omitempty" bson:"salt,omitempty" xml:"salt,omitempty"`
}

// Manifest records a pipeline's condition sequence in application order.
type Manifest struct {
	XMLName    xml.Name        `json:"-" yaml:"-" msgpack:"-" bson:"-" xml:"manifest"`
	Version    int             `json:"version" yaml:"version" msgpack:"version" bson:"version" xml:"version,attr"`
	Conditions []ConditionSpec `json:"conditions" yaml:"conditions" msgpack:"conditions" bson:"conditions" xml:"condition"`
}

// Observations carries the observed side of each gate at open time.
type Observations struct {
	Clock      Clock       // Clock for time conditions; nil uses SystemClock
	Location   *Coordinate // Current position; nil leaves location gates closed
	Credential string      // Presented credential hash
	Passphrase []byte      // Passphrase for cipher conditions
}

// Describe returns the manifest of p. Every condition must implement
// Describer and report a kind with a registered builder.
func Describe(p *Pipeline) (Manifest, error) {
	if err := p.Err(); err != nil {
		return Manifest{}, err
	}

	conds := p.Conditions()
	m := Manifest{Version: ManifestVersion, Conditions: make([]ConditionSpec, 0, len(conds))}
	for i, c := range conds {
		d, ok := c.(Describer)
		if !ok {
			return Manifest{}, fmt.Errorf("condition %d: %w", i, newConfigError(ErrUnknownKind, KindCustom, ""))
		}
		spec := d.Describe()
		if _, ok := Lookup(spec.Kind); !ok {
			return Manifest{}, fmt.Errorf("condition %d: %w", i, newConfigError(ErrUnknownKind, spec.Kind, ""))
		}
		m.Conditions = append(m.Conditions, spec)
	}
	return m, nil
}

// Build reconstructs a pipeline from m, preserving its order exactly.
func Build(m Manifest, obs Observations, opts ...Option) (*Pipeline, error) {
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("%w: unsupported manifest version %d", ErrInvalidCondition, m.Version)
	}

	p := New(opts...)
	for i, spec := range m.Conditions {
		build, ok := Lookup(spec.Kind)
		if !ok {
			return nil, fmt.Errorf("condition %d: %w", i, newConfigError(ErrUnknownKind, spec.Kind, ""))
		}
		c, err := build(spec, obs)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		p.Add(c)
	}
	return p, nil
}
