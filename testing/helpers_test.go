package testing

import (
	"bytes"
	"testing"
	"time"

	"github.com/zoobzio/tumbler"
)

func TestTestKey(t *testing.T) {
	key := TestKey(t)
	if len(key) != 32 {
		t.Errorf("TestKey() length = %d, want 32", len(key))
	}
}

func TestTestEncryptor(t *testing.T) {
	enc := TestEncryptor(t)

	ciphertext, err := enc.Encrypt([]byte("test"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	decrypted, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if string(decrypted) != "test" {
		t.Errorf("round-trip failed: got %q", decrypted)
	}
}

func TestClock_Advance(t *testing.T) {
	c := NewClock()
	if !c.Now().Equal(Epoch) {
		t.Fatalf("Now() = %v, want %v", c.Now(), Epoch)
	}
	c.Advance(90 * time.Second)
	if got := c.Now().Sub(Epoch); got != 90*time.Second {
		t.Errorf("elapsed = %v, want 90s", got)
	}
}

func TestStep_RecordsCalls(t *testing.T) {
	rec := &Recorder{}
	s := &Step{Name: "A", Suffix: "a", Prefix: "A", Open: true, Recorder: rec}

	out, _ := s.Forward([]byte("x"))
	if !bytes.Equal(out, []byte("xa")) {
		t.Errorf("Forward() = %q, want %q", out, "xa")
	}
	out, _ = s.Inverse([]byte("x"))
	if !bytes.Equal(out, []byte("Ax")) {
		t.Errorf("Inverse() = %q, want %q", out, "Ax")
	}
	s.Satisfied()

	want := []string{"A.forward", "A.inverse", "A.satisfied"}
	got := rec.Calls()
	if len(got) != len(want) {
		t.Fatalf("Calls() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Calls()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSampleManifest_Buildable(t *testing.T) {
	m := SampleManifest()
	if diff := EqualManifests(m, SampleManifest()); diff != "" {
		t.Fatalf("EqualManifests(self) = %s", diff)
	}

	loc := tumbler.Coordinate{Lat: 40.0, Lon: -70.0}
	p, err := tumbler.Build(m, tumbler.Observations{
		Clock:      NewClock(),
		Location:   &loc,
		Credential: "hash123",
		Passphrase: []byte("correct horse"),
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if p.Len() != len(m.Conditions) {
		t.Errorf("Len() = %d, want %d", p.Len(), len(m.Conditions))
	}
}
