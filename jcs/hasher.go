package jcs

import (
	"encoding/hex"
	"strings"

	"webvh.dev/didlog/codec"
)

// Hasher combines the canonicalizer, a digest function and the multibase codec
// into the content-address primitive used for SCIDs and entry hashes.
//
// The zero value hashes with sha2-256, the algorithm the DID log protocol
// pins. Hasher is stateless; a single value is safe for concurrent use.
type Hasher struct {
	Digest codec.DigestAlgorithm
}

// EncodeMultihash returns the multihash of the raw UTF-8 bytes of text.
//
// Matches the published multiformats sha2-256 vector: "Merkle–Damgård" yields
// 122041dd...89a8.
func (h Hasher) EncodeMultihash(text string) ([]byte, error) {
	return h.Digest.EncodeMultihash([]byte(text))
}

// EncodeHex canonicalizes v and returns the bare hex digest, for contexts
// embedding a document hash inside a signature payload without multibase
// wrapping.
func (h Hasher) EncodeHex(v any) (string, error) {
	canonical, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	digest, err := h.Digest.Sum(canonical)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(digest), nil
}

// SumCanonical canonicalizes v and returns the raw digest bytes.
func (h Hasher) SumCanonical(v any) ([]byte, error) {
	canonical, err := Canonicalize(v)
	if err != nil {
		return nil, err
	}
	return h.Digest.Sum(canonical)
}

// Base58EncodeMultihash returns the content address of v as plain base58
// text, without the multibase prefix. This is the SCID text form the DID
// method embeds in proof challenges.
func (h Hasher) Base58EncodeMultihash(v any) (string, error) {
	address, err := h.Base58BtcEncodeMultihash(v)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(address, codec.Base58BtcIdentifier), nil
}

// Base58BtcEncodeMultihash returns the content address of v:
// multibase(multihash(canonicalize(v))).
//
// Two calls with logically-equal values always yield the identical address
// string.
func (h Hasher) Base58BtcEncodeMultihash(v any) (string, error) {
	canonical, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	mh, err := h.Digest.EncodeMultihash(canonical)
	if err != nil {
		return "", err
	}
	return codec.Base58Btc.Encode(mh), nil
}
