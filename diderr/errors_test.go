package diderr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsKindMatchesWrappedErrors(t *testing.T) {
	base := New(KindDeserializationFailed, "bad text")
	wrapped := fmt.Errorf("outer: %w", base)
	if !IsKind(wrapped, KindDeserializationFailed) {
		t.Fatalf("wrapped error lost its kind")
	}
	if IsKind(wrapped, KindValidationError) {
		t.Fatalf("kind matched a different category")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(KindValidationError, "validation failed", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable via errors.Is")
	}
	if KindOf(err) != KindValidationError {
		t.Fatalf("KindOf = %s", KindOf(err))
	}
}

func TestKindOfForeignError(t *testing.T) {
	if KindOf(errors.New("plain")) != "" {
		t.Fatalf("foreign error reported a kind")
	}
	if KindOf(nil) != "" {
		t.Fatalf("nil error reported a kind")
	}
}

func TestErrorMessageNamesKind(t *testing.T) {
	err := New(KindKeyNotFound, "no key for did:key:z6Mk#z6Mk")
	msg := err.Error()
	if msg == "" {
		t.Fatalf("empty error message")
	}
}
