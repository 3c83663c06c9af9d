package tumbler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/tumbler"
	tumblertest "github.com/zoobzio/tumbler/testing"
)

func TestDescribe(t *testing.T) {
	clock := tumblertest.NewClock()
	allowed := tumbler.Coordinate{Lat: 40.0, Lon: -70.0}
	salt := []byte("0123456789abcdef")

	pass, err := tumbler.Passphrase([]byte("open sesame"), salt)
	if err != nil {
		t.Fatalf("Passphrase() error: %v", err)
	}

	p := tumbler.New().
		Add(mustTime(t, time.Hour, clock)).
		Add(mustLocation(t, allowed, allowed)).
		Add(mustBiometric(t, "hash123", "hash123").WithHashAlgo(tumbler.HashSHA256)).
		Add(pass)

	m, err := tumbler.Describe(p)
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}

	if diff := tumblertest.EqualManifests(tumbler.Manifest{
		Version: tumbler.ManifestVersion,
		Conditions: []tumbler.ConditionSpec{
			{Kind: tumbler.KindTime, UnlockAt: ptr(tumblertest.Epoch.Add(time.Hour))},
			{Kind: tumbler.KindLocation, Allowed: &allowed},
			{Kind: tumbler.KindBiometric, ExpectedHash: "hash123", HashAlgo: tumbler.HashSHA256},
			{Kind: tumbler.KindCipher, Algo: tumbler.CipherXChaCha20, Salt: "30313233343536373839616263646566"},
		},
	}, m); diff != "" {
		t.Error(diff)
	}
}

func TestDescribe_Undescribable(t *testing.T) {
	p := tumbler.New().
		Add(mustBiometric(t, "h", "h")).
		Add(tumbler.Cipher(tumblertest.TestEncryptor(t)))

	_, err := tumbler.Describe(p)
	if !errors.Is(err, tumbler.ErrUnknownKind) {
		t.Errorf("Describe() error = %v, want ErrUnknownKind", err)
	}
}

func TestDescribe_Poisoned(t *testing.T) {
	_, err := tumbler.Describe(tumbler.New().Add(nil))
	if !errors.Is(err, tumbler.ErrInvalidCondition) {
		t.Errorf("Describe() error = %v, want ErrInvalidCondition", err)
	}
}

func TestBuild_PreservesOrder(t *testing.T) {
	clock := tumblertest.NewClock()
	clock.Advance(2 * time.Hour)
	here := tumbler.Coordinate{Lat: 40.004, Lon: -70.003}

	p, err := tumbler.Build(tumblertest.SampleManifest(), tumbler.Observations{
		Clock:      clock,
		Location:   &here,
		Credential: "hash123",
		Passphrase: []byte("open sesame"),
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	want := []tumbler.Kind{tumbler.KindTime, tumbler.KindLocation, tumbler.KindBiometric, tumbler.KindCipher}
	conds := p.Conditions()
	if len(conds) != len(want) {
		t.Fatalf("len(Conditions()) = %d, want %d", len(conds), len(want))
	}
	for i, c := range conds {
		d, ok := c.(tumbler.Describer)
		if !ok {
			t.Fatalf("condition %d is not describable", i)
		}
		if got := d.Describe().Kind; got != want[i] {
			t.Errorf("condition %d kind = %q, want %q", i, got, want[i])
		}
	}

	if idx, ok := p.Ready(); !ok {
		t.Errorf("Ready() = (%d, false), want all gates open", idx)
	}
}

func TestBuild_MissingLocation(t *testing.T) {
	clock := tumblertest.NewClock()
	clock.Advance(2 * time.Hour)

	p, err := tumbler.Build(tumblertest.SampleManifest(), tumbler.Observations{
		Clock:      clock,
		Credential: "hash123",
		Passphrase: []byte("open sesame"),
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	_, err = p.Decrypt(context.Background(), []byte("x"))
	var step *tumbler.StepError
	if !errors.As(err, &step) {
		t.Fatalf("Decrypt() error = %v, want *StepError", err)
	}
	if step.Index != 1 || step.Kind != tumbler.KindLocation {
		t.Errorf("StepError = %d (%s), want 1 (location)", step.Index, step.Kind)
	}
	if !errors.Is(err, tumbler.ErrConditionNotSatisfied) {
		t.Errorf("Decrypt() error = %v, want ErrConditionNotSatisfied", err)
	}
}

func TestBuild_Errors(t *testing.T) {
	unlock := tumblertest.Epoch
	tests := []struct {
		name     string
		manifest tumbler.Manifest
		obs      tumbler.Observations
		want     error
		field    string
	}{
		{
			name:     "version",
			manifest: tumbler.Manifest{Version: 99},
			want:     tumbler.ErrInvalidCondition,
		},
		{
			name: "unknown kind",
			manifest: tumbler.Manifest{Version: tumbler.ManifestVersion, Conditions: []tumbler.ConditionSpec{
				{Kind: "geofence"},
			}},
			want: tumbler.ErrUnknownKind,
		},
		{
			name: "time without unlock",
			manifest: tumbler.Manifest{Version: tumbler.ManifestVersion, Conditions: []tumbler.ConditionSpec{
				{Kind: tumbler.KindTime},
			}},
			want:  tumbler.ErrInvalidCondition,
			field: "unlock_at",
		},
		{
			name: "location without allowed",
			manifest: tumbler.Manifest{Version: tumbler.ManifestVersion, Conditions: []tumbler.ConditionSpec{
				{Kind: tumbler.KindTime, UnlockAt: &unlock},
				{Kind: tumbler.KindLocation},
			}},
			want:  tumbler.ErrInvalidCondition,
			field: "allowed",
		},
		{
			name: "biometric bad algo",
			manifest: tumbler.Manifest{Version: tumbler.ManifestVersion, Conditions: []tumbler.ConditionSpec{
				{Kind: tumbler.KindBiometric, ExpectedHash: "h", HashAlgo: "md5"},
			}},
			want:  tumbler.ErrInvalidCondition,
			field: "hash_algo",
		},
		{
			name: "cipher bad algo",
			manifest: tumbler.Manifest{Version: tumbler.ManifestVersion, Conditions: []tumbler.ConditionSpec{
				{Kind: tumbler.KindCipher, Algo: "rot13", Salt: "00112233445566778899aabbccddeeff"},
			}},
			obs:   tumbler.Observations{Passphrase: []byte("pw")},
			want:  tumbler.ErrInvalidCondition,
			field: "algo",
		},
		{
			name: "cipher bad salt",
			manifest: tumbler.Manifest{Version: tumbler.ManifestVersion, Conditions: []tumbler.ConditionSpec{
				{Kind: tumbler.KindCipher, Algo: tumbler.CipherXChaCha20, Salt: "not-hex"},
			}},
			obs:   tumbler.Observations{Passphrase: []byte("pw")},
			want:  tumbler.ErrInvalidCondition,
			field: "salt",
		},
		{
			name: "cipher without passphrase",
			manifest: tumbler.Manifest{Version: tumbler.ManifestVersion, Conditions: []tumbler.ConditionSpec{
				{Kind: tumbler.KindCipher, Algo: tumbler.CipherXChaCha20, Salt: "00112233445566778899aabbccddeeff"},
			}},
			want:  tumbler.ErrMissingObservation,
			field: "passphrase",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tumbler.Build(tt.manifest, tt.obs)
			if p != nil {
				t.Error("Build() should not return a pipeline on error")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Build() error = %v, want %v", err, tt.want)
			}
			if tt.field == "" {
				return
			}
			var cfg *tumbler.ConfigError
			if !errors.As(err, &cfg) {
				t.Fatalf("Build() error should be *ConfigError, got %T", err)
			}
			if cfg.Field != tt.field {
				t.Errorf("ConfigError.Field = %q, want %q", cfg.Field, tt.field)
			}
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
