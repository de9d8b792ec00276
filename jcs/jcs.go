// Package jcs provides deterministic JSON canonicalization (RFC 8785) and the
// content-address hashing built on top of it.
//
// Two JSON values with identical logical content canonicalize to identical
// bytes regardless of object-key order; the chain-linking and SCID mechanisms
// of the DID log depend on exactly that property.
package jcs

import (
	"encoding/json"

	canonjson "github.com/gowebpki/jcs"

	"webvh.dev/didlog/diderr"
)

// Canonicalize returns the canonical bytes for any JSON-compatible value.
//
// []byte and json.RawMessage inputs are treated as already-serialized JSON
// text; anything else is marshalled first. Raw text that is not valid JSON
// fails with DeserializationFailed; values the canonical form cannot express
// fail with SerializationFailed.
func Canonicalize(v any) ([]byte, error) {
	switch raw := v.(type) {
	case []byte:
		return CanonicalizeRaw(raw)
	case json.RawMessage:
		return CanonicalizeRaw(raw)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, diderr.Wrap(diderr.KindSerializationFailed, "value cannot be serialized to JSON", err)
	}
	canonical, err := canonjson.Transform(data)
	if err != nil {
		return nil, diderr.Wrap(diderr.KindSerializationFailed, "value cannot be canonicalized", err)
	}
	return canonical, nil
}

// CanonicalizeRaw canonicalizes already-serialized JSON text.
func CanonicalizeRaw(text []byte) ([]byte, error) {
	if !json.Valid(text) {
		return nil, diderr.New(diderr.KindDeserializationFailed, "input is not valid JSON text")
	}
	canonical, err := canonjson.Transform(text)
	if err != nil {
		return nil, diderr.Wrap(diderr.KindDeserializationFailed, "JSON text cannot be canonicalized", err)
	}
	return canonical, nil
}
