// Package diderr defines the structured error taxonomy shared by the DID log
// integrity packages.
package diderr

import "errors"

// Kind is a stable category for programmatic error handling.
//
// These categories are intended to remain stable across versions.
// Callers should branch on Kind rather than matching error strings.
//
// NOTE: Error() strings are intentionally kept human-readable and may evolve.
// Use errors.As to extract *Error for structured handling.
type Kind string

const (
	// KindDeserializationFailed covers input text that is not valid structured
	// data as well as multibase/multihash decoding failures (wrong prefix,
	// truncated digest, undersized output buffer).
	KindDeserializationFailed Kind = "DeserializationFailed"

	// KindSerializationFailed covers values the canonical form cannot express.
	KindSerializationFailed Kind = "SerializationFailed"

	// KindInvalidDataIntegrityProof covers signature mismatches and
	// structurally incomplete proof options.
	KindInvalidDataIntegrityProof Kind = "InvalidDataIntegrityProof"

	// KindInvalidDidMethodParameter covers tag/value disagreement and missing
	// required parameters.
	KindInvalidDidMethodParameter Kind = "InvalidDidMethodParameter"

	// KindValidationError covers structural or semantic (chain/time) schema
	// violations.
	KindValidationError Kind = "ValidationError"

	// KindKeyNotFound covers verification-method references the injected
	// resolver cannot satisfy.
	KindKeyNotFound Kind = "KeyNotFound"
)

// Error is the library's structured error type.
//
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New returns a structured error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap returns a structured error of the given kind wrapping cause.
func Wrap(kind Kind, msg string, cause error) error {
	if cause == nil {
		return New(kind, msg)
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the stable Kind for a structured error, or "" if unknown.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}
