// Package testing provides test utilities for tumbler.
package testing

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/tumbler"
)

// TestKey returns a valid 32-byte key for testing.
func TestKey(t testing.TB) []byte {
	t.Helper()
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestEncryptor returns an XChaCha20 encryptor configured for testing.
func TestEncryptor(t testing.TB) tumbler.Encryptor {
	t.Helper()
	enc, err := tumbler.XChaCha20(TestKey(t))
	if err != nil {
		t.Fatalf("XChaCha20() error: %v", err)
	}
	return enc
}

// Epoch is the fixed start time of clocks returned by NewClock.
var Epoch = time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)

// Clock is a manually advanced tumbler.Clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock set to Epoch.
func NewClock() *Clock {
	return &Clock{now: Epoch}
}

// Now implements tumbler.Clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Recorder collects the calls made on Step conditions, in order.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *Recorder) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

// Calls returns a copy of the recorded calls, e.g. "A.forward", "B.satisfied".
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// ErrStepFailed is returned by a Step configured to fail.
var ErrStepFailed = errors.New("step failed")

// Step is a configurable condition that records every call it receives.
// Forward appends Suffix; Inverse prepends Prefix. The two are deliberately
// not inverses of each other so tests can see the order steps ran in.
type Step struct {
	Name     string
	Suffix   string
	Prefix   string
	Open     bool
	FailFwd  bool
	FailInv  bool
	Recorder *Recorder
}

// Satisfied implements tumbler.Condition.
func (s *Step) Satisfied() bool {
	s.Recorder.record(s.Name + ".satisfied")
	return s.Open
}

// Forward implements tumbler.Condition.
func (s *Step) Forward(data []byte) ([]byte, error) {
	s.Recorder.record(s.Name + ".forward")
	if s.FailFwd {
		return nil, fmt.Errorf("%s: %w", s.Name, ErrStepFailed)
	}
	return append(append([]byte(nil), data...), s.Suffix...), nil
}

// Inverse implements tumbler.Condition.
func (s *Step) Inverse(data []byte) ([]byte, error) {
	s.Recorder.record(s.Name + ".inverse")
	if s.FailInv {
		return nil, fmt.Errorf("%s: %w", s.Name, ErrStepFailed)
	}
	return append([]byte(s.Prefix), data...), nil
}

// SampleManifest returns a manifest exercising every built-in kind, in the
// order time, location, biometric, cipher.
func SampleManifest() tumbler.Manifest {
	unlock := Epoch.Add(time.Hour)
	allowed := tumbler.Coordinate{Lat: 40.0, Lon: -70.0}
	return tumbler.Manifest{
		Version: tumbler.ManifestVersion,
		Conditions: []tumbler.ConditionSpec{
			{Kind: tumbler.KindTime, UnlockAt: &unlock},
			{Kind: tumbler.KindLocation, Allowed: &allowed},
			{Kind: tumbler.KindBiometric, ExpectedHash: "hash123", HashAlgo: tumbler.HashSHA256},
			{Kind: tumbler.KindCipher, Algo: tumbler.CipherXChaCha20, Salt: "00112233445566778899aabbccddeeff"},
		},
	}
}

// EqualManifests reports the first difference between two manifests, or "".
func EqualManifests(want, got tumbler.Manifest) string {
	if want.Version != got.Version {
		return fmt.Sprintf("version = %d, want %d", got.Version, want.Version)
	}
	if len(want.Conditions) != len(got.Conditions) {
		return fmt.Sprintf("len(conditions) = %d, want %d", len(got.Conditions), len(want.Conditions))
	}
	for i, w := range want.Conditions {
		g := got.Conditions[i]
		switch {
		case w.Kind != g.Kind:
			return fmt.Sprintf("conditions[%d].Kind = %q, want %q", i, g.Kind, w.Kind)
		case (w.UnlockAt == nil) != (g.UnlockAt == nil):
			return fmt.Sprintf("conditions[%d].UnlockAt presence differs", i)
		case w.UnlockAt != nil && !w.UnlockAt.Equal(*g.UnlockAt):
			return fmt.Sprintf("conditions[%d].UnlockAt = %v, want %v", i, g.UnlockAt, w.UnlockAt)
		case (w.Allowed == nil) != (g.Allowed == nil):
			return fmt.Sprintf("conditions[%d].Allowed presence differs", i)
		case w.Allowed != nil && *w.Allowed != *g.Allowed:
			return fmt.Sprintf("conditions[%d].Allowed = %v, want %v", i, *g.Allowed, *w.Allowed)
		case w.ExpectedHash != g.ExpectedHash, w.HashAlgo != g.HashAlgo, w.Algo != g.Algo, w.Salt != g.Salt:
			return fmt.Sprintf("conditions[%d] = %+v, want %+v", i, g, w)
		}
	}
	return ""
}
