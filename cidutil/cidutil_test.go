package cidutil

import (
	"testing"
)

func TestCIDv1RawSHA256(t *testing.T) {
	// "hello world" as a raw block.
	want := "bafkreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e"
	if got := CIDv1RawSHA256([]byte("hello world")); got != want {
		t.Fatalf("cid = %s, want %s", got, want)
	}
}

func TestCIDv1RawSHA256CIDMatchesString(t *testing.T) {
	data := []byte(`{"a":1}`)
	c, err := CIDv1RawSHA256CID(data)
	if err != nil {
		t.Fatalf("cid: %v", err)
	}
	if c.String() != CIDv1RawSHA256(data) {
		t.Fatalf("cid mismatch: %s vs %s", c.String(), CIDv1RawSHA256(data))
	}
}

func TestCIDDeterministicOverCanonicalBytes(t *testing.T) {
	a := CIDv1RawSHA256([]byte(`{"a":1,"b":2}`))
	b := CIDv1RawSHA256([]byte(`{"a":1,"b":2}`))
	if a != b {
		t.Fatalf("same bytes produced different CIDs")
	}
}
