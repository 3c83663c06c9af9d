// Package bson provides a BSON codec implementation.
package bson

import (
	"errors"

	"github.com/zoobzio/tumbler"
	"go.mongodb.org/mongo-driver/bson"
)

// Extension is the conventional file extension for BSON envelopes.
const Extension = ".bson"

// bsonCodec implements tumbler.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() tumbler.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as a BSON document.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

// Unmarshal decodes a BSON document into v after validating its framing.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	if err := bson.Raw(data).Validate(); err != nil {
		return errors.Join(errors.New("invalid bson document"), err)
	}
	return bson.Unmarshal(data, v)
}
