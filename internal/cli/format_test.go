package cli

import (
	"errors"
	"testing"

	"github.com/zoobzio/tumbler"
)

func TestCodecFor(t *testing.T) {
	tests := []struct {
		format string
		path   string
		want   string
	}{
		{"", "note.json", "application/json"},
		{"", "note.YAML", "application/yaml"},
		{"", "note.yml", "application/yaml"},
		{"", "note.msgpack", "application/msgpack"},
		{"", "note.bson", "application/bson"},
		{"", "note.xml", "application/xml"},
		{"", "note", "application/json"},
		{"", "", "application/json"},
		{"xml", "note.json", "application/xml"},
		{"MSGPACK", "", "application/msgpack"},
	}

	for _, tt := range tests {
		codec, err := codecFor(tt.format, tt.path)
		if err != nil {
			t.Errorf("codecFor(%q, %q) error: %v", tt.format, tt.path, err)
			continue
		}
		if codec.ContentType() != tt.want {
			t.Errorf("codecFor(%q, %q) = %s, want %s", tt.format, tt.path, codec.ContentType(), tt.want)
		}
	}

	if _, err := codecFor("toml", ""); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseCoordinate(t *testing.T) {
	c, err := parseCoordinate("40.7128, -74.0060")
	if err != nil {
		t.Fatalf("parseCoordinate() error: %v", err)
	}
	if c != (tumbler.Coordinate{Lat: 40.7128, Lon: -74.006}) {
		t.Errorf("parseCoordinate() = %v", c)
	}

	for _, in := range []string{"", "40", "40,-70,1", "north,-70", "40,west", "95,0", "0,181"} {
		if _, err := parseCoordinate(in); !errors.Is(err, tumbler.ErrInvalidCoordinate) {
			t.Errorf("parseCoordinate(%q) error = %v, want ErrInvalidCoordinate", in, err)
		}
	}
}
