package yaml

import (
	"strings"
	"testing"

	"github.com/zoobzio/tumbler"
	tumblertest "github.com/zoobzio/tumbler/testing"
)

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Error("New() should return non-nil codec")
	}
}

func TestContentType(t *testing.T) {
	c := New()
	if c.ContentType() != "application/yaml" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/yaml")
	}
}

func TestExtension(t *testing.T) {
	if Extension != ".yaml" {
		t.Errorf("Extension = %q, want %q", Extension, ".yaml")
	}
}

func TestManifestRoundTrip(t *testing.T) {
	c := New()
	original := tumblertest.SampleManifest()

	data, err := c.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var restored tumbler.Manifest
	if err := c.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if diff := tumblertest.EqualManifests(original, restored); diff != "" {
		t.Errorf("round-trip mismatch: %s", diff)
	}
}

func TestEnvelopePayloadRoundTrip(t *testing.T) {
	c := New()
	original := tumbler.Envelope{
		ID:       "8a0c8f5e-1c1f-4f59-9d0e-2f7c8f0d4a11",
		Manifest: tumbler.Manifest{Version: tumbler.ManifestVersion},
		Payload:  tumbler.Payload{0x00, 0xff, 0x10, '<', '&', 0x80},
	}

	data, err := c.Marshal(&original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var restored tumbler.Envelope
	if err := c.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if restored.ID != original.ID {
		t.Errorf("ID = %q, want %q", restored.ID, original.ID)
	}
	if string(restored.Payload) != string(original.Payload) {
		t.Errorf("Payload = %x, want %x", restored.Payload, original.Payload)
	}
}

func TestUnmarshalUnknownField(t *testing.T) {
	c := New()

	var m tumbler.Manifest
	err := c.Unmarshal([]byte("version: 1\nconditions: []\nextra: true\n"), &m)
	if err == nil {
		t.Error("Unmarshal(unknown field) should return error")
	}
}

func TestMarshalIndent(t *testing.T) {
	c := New()

	data, err := c.Marshal(tumblertest.SampleManifest())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.Contains(string(data), "\n  - kind: time\n") {
		t.Errorf("Marshal() should indent sequences by two spaces, got:\n%s", data)
	}
}
