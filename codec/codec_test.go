package codec

import (
	"bytes"
	"encoding/hex"
	"testing"

	"webvh.dev/didlog/diderr"
)

func TestBase58BtcRoundTrip(t *testing.T) {
	data := []byte{0xed, 0x01, 0xde, 0xad, 0xbe, 0xef}
	text := Base58Btc.Encode(data)
	if len(text) == 0 || text[0] != 'z' {
		t.Fatalf("encoded text %q does not carry the base58btc prefix", text)
	}
	decoded, err := Base58Btc.Decode(text)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Fatalf("round trip mismatch: got %x want %x", decoded, data)
	}
}

func TestBase58BtcDecodeMissingPrefix(t *testing.T) {
	_, err := Base58Btc.Decode("6MkrJVnaZkeFzdQyMZu1")
	if !diderr.IsKind(err, diderr.KindDeserializationFailed) {
		t.Fatalf("want DeserializationFailed, got %v", err)
	}
}

func TestDecodeOntoUndersizedBuffer(t *testing.T) {
	text := Base58Btc.Encode([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	buf := make([]byte, 4)
	err := Base58Btc.DecodeOnto(text, buf)
	if !diderr.IsKind(err, diderr.KindDeserializationFailed) {
		t.Fatalf("want DeserializationFailed for undersized buffer, got %v", err)
	}
}

func TestDecodeOntoExactBuffer(t *testing.T) {
	data := []byte{9, 8, 7, 6}
	text := Base58Btc.Encode(data)
	buf := make([]byte, 4)
	if err := Base58Btc.DecodeOnto(text, buf); err != nil {
		t.Fatalf("decode onto: %v", err)
	}
	if !bytes.Equal(buf, data) {
		t.Fatalf("buffer mismatch: got %x want %x", buf, data)
	}
}

func TestMultihashRoundTrip(t *testing.T) {
	mh, err := SHA2_256.EncodeMultihash([]byte("hello"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if mh[0] != 0x12 || mh[1] != 0x20 {
		t.Fatalf("multihash header %x, want 1220", mh[:2])
	}
	digest, err := DecodeMultihash(mh)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(digest, mh[2:]) {
		t.Fatalf("digest mismatch")
	}
}

func TestMultihashSHA3Tagged(t *testing.T) {
	mh, err := SHA3_256.EncodeMultihash([]byte("hello"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if mh[0] != 0x16 {
		t.Fatalf("sha3-256 multihash code %#x, want 0x16", mh[0])
	}
}

func TestDecodeMultihashTruncated(t *testing.T) {
	mh, err := SHA2_256.EncodeMultihash([]byte("hello"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = DecodeMultihash(mh[:10])
	if !diderr.IsKind(err, diderr.KindDeserializationFailed) {
		t.Fatalf("want DeserializationFailed for truncated multihash, got %v", err)
	}
}

func TestDigestAlgorithmNames(t *testing.T) {
	if SHA2_256.String() != "sha2-256" || SHA3_256.String() != "sha3-256" {
		t.Fatalf("unexpected digest algorithm names %q %q", SHA2_256, SHA3_256)
	}
}

func TestSumSHA2Vector(t *testing.T) {
	sum, err := SHA2_256.Sum([]byte("abc"))
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := hex.EncodeToString(sum); got != want {
		t.Fatalf("sha2-256(abc) = %s, want %s", got, want)
	}
}
