package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zoobzio/tumbler"
	"github.com/zoobzio/tumbler/bson"
	"github.com/zoobzio/tumbler/json"
	"github.com/zoobzio/tumbler/msgpack"
	"github.com/zoobzio/tumbler/xml"
	"github.com/zoobzio/tumbler/yaml"
)

// defaultFormat is used when neither --format nor a file extension decides.
const defaultFormat = "json"

var codecs = map[string]func() tumbler.Codec{
	"json":    json.New,
	"yaml":    yaml.New,
	"msgpack": msgpack.New,
	"bson":    bson.New,
	"xml":     xml.New,
}

var extensions = map[string]string{
	json.Extension:    "json",
	yaml.Extension:    "yaml",
	".yml":            "yaml",
	msgpack.Extension: "msgpack",
	".mp":             "msgpack",
	bson.Extension:    "bson",
	xml.Extension:     "xml",
}

// codecFor resolves the envelope codec from an explicit format, falling back
// to the file extension of path and then to JSON.
func codecFor(format, path string) (tumbler.Codec, error) {
	if format == "" {
		format = extensions[strings.ToLower(filepath.Ext(path))]
	}
	if format == "" {
		format = defaultFormat
	}
	newCodec, ok := codecs[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (want json, yaml, msgpack, bson or xml)", format)
	}
	return newCodec(), nil
}

// parseCoordinate parses "lat,lon" in decimal degrees.
func parseCoordinate(s string) (tumbler.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return tumbler.Coordinate{}, fmt.Errorf("%w: %q is not lat,lon", tumbler.ErrInvalidCoordinate, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return tumbler.Coordinate{}, fmt.Errorf("%w: latitude %q", tumbler.ErrInvalidCoordinate, parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return tumbler.Coordinate{}, fmt.Errorf("%w: longitude %q", tumbler.ErrInvalidCoordinate, parts[1])
	}
	c := tumbler.Coordinate{Lat: lat, Lon: lon}
	return c, c.Validate()
}

// readInput returns inline data if given, else the contents of path, else stdin.
func readInput(data string, hasData bool, path string, stdin io.Reader) ([]byte, error) {
	switch {
	case hasData:
		return []byte(data), nil
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		return b, nil
	default:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return b, nil
	}
}

// writeOutput writes b to path, or to stdout when path is empty.
func writeOutput(path string, stdout io.Writer, b []byte) error {
	if path == "" {
		_, err := stdout.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
