package tumbler

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"time"

	"github.com/google/uuid"
)

// Payload is sealed ciphertext. It encodes as base64 in text formats and as
// raw binary in binary formats.
type Payload []byte

// MarshalText implements encoding.TextMarshaler.
func (p Payload) MarshalText() ([]byte, error) {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(p)))
	base64.StdEncoding.Encode(out, p)
	return out, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Payload) UnmarshalText(text []byte) error {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(text)))
	n, err := base64.StdEncoding.Decode(out, text)
	if err != nil {
		return err
	}
	*p = out[:n]
	return nil
}

// Envelope pairs a sealed payload with the manifest needed to open it, so
// the decrypt side always replays the exact condition sequence used to seal.
type Envelope struct {
	XMLName   xml.Name  `json:"-" yaml:"-" msgpack:"-" bson:"-" xml:"envelope"`
	ID        string    `json:"id" yaml:"id" msgpack:"id" bson:"id" xml:"id,attr"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" msgpack:"created_at" bson:"created_at" xml:"created_at"`
	Manifest  Manifest  `json:"manifest" yaml:"manifest" msgpack:"manifest" bson:"manifest" xml:"manifest"`
	Payload   Payload   `json:"payload" yaml:"payload" msgpack:"payload" bson:"payload" xml:"payload"`
}

// Seal encrypts data through p and packs the result with p's manifest.
func Seal(ctx context.Context, codec Codec, p *Pipeline, data []byte) ([]byte, error) {
	env, err := SealEnvelope(ctx, p, data)
	if err != nil {
		return nil, err
	}
	out, err := codec.Marshal(env)
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return out, nil
}

// SealEnvelope encrypts data through p and returns the unencoded envelope.
func SealEnvelope(ctx context.Context, p *Pipeline, data []byte) (*Envelope, error) {
	m, err := Describe(p)
	if err != nil {
		return nil, err
	}
	payload, err := p.Encrypt(ctx, data)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Manifest:  m,
		Payload:   payload,
	}, nil
}

// Unpack decodes an envelope without opening it.
func Unpack(codec Codec, data []byte) (*Envelope, error) {
	var env Envelope
	if err := codec.Unmarshal(data, &env); err != nil {
		return nil, newCodecError(ErrUnmarshal, err)
	}
	return &env, nil
}

// Open decodes an envelope, rebuilds its pipeline from the manifest with obs
// and decrypts the payload.
func Open(ctx context.Context, codec Codec, data []byte, obs Observations, opts ...Option) ([]byte, error) {
	env, err := Unpack(codec, data)
	if err != nil {
		return nil, err
	}
	return env.Open(ctx, obs, opts...)
}

// Pipeline rebuilds the envelope's pipeline with obs.
func (e *Envelope) Pipeline(obs Observations, opts ...Option) (*Pipeline, error) {
	return Build(e.Manifest, obs, opts...)
}

// Open rebuilds the envelope's pipeline with obs and decrypts the payload.
func (e *Envelope) Open(ctx context.Context, obs Observations, opts ...Option) ([]byte, error) {
	p, err := e.Pipeline(obs, opts...)
	if err != nil {
		return nil, err
	}
	return p.Decrypt(ctx, e.Payload)
}
