// Package codec wraps the multibase and multihash formats used throughout the
// DID log: self-describing digests and reversible text encodings for digests
// and raw key bytes.
package codec

import (
	"fmt"
	"strings"

	"github.com/multiformats/go-multibase"

	"webvh.dev/didlog/diderr"
)

// Base58BtcIdentifier is the one-character multibase prefix for the base58
// bitcoin encoding.
// See https://www.ietf.org/archive/id/draft-multiformats-multibase-08.html#appendix-D.1
const Base58BtcIdentifier = "z"

// Algorithm selects a multibase encoding. Selection is an explicit tag, never
// sniffed from the input text.
type Algorithm int

const (
	// Base58Btc is base58 with the Bitcoin alphabet, multibase prefix 'z'.
	// The only encoding the DID log uses.
	Base58Btc Algorithm = iota
)

func (a Algorithm) String() string {
	switch a {
	case Base58Btc:
		return "Base58btc"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// Encode returns the multibase text for data, including the algorithm prefix.
func (a Algorithm) Encode(data []byte) string {
	switch a {
	case Base58Btc:
		s, err := multibase.Encode(multibase.Base58BTC, data)
		if err != nil {
			// multibase.Encode only errors for unknown encodings; with
			// Base58BTC this is unreachable.
			return ""
		}
		return s
	default:
		return ""
	}
}

// Decode returns the bytes encoded in the multibase text.
//
// Text lacking the algorithm's one-character prefix fails with a
// DeserializationFailed error naming the expected algorithm.
func (a Algorithm) Decode(text string) ([]byte, error) {
	switch a {
	case Base58Btc:
		if !strings.HasPrefix(text, Base58BtcIdentifier) {
			return nil, diderr.New(diderr.KindDeserializationFailed,
				fmt.Sprintf("invalid multibase algorithm identifier '%s'", a))
		}
		_, data, err := multibase.Decode(text)
		if err != nil {
			return nil, diderr.Wrap(diderr.KindDeserializationFailed,
				fmt.Sprintf("invalid %s multibase text", a), err)
		}
		return data, nil
	default:
		return nil, diderr.New(diderr.KindDeserializationFailed,
			fmt.Sprintf("unsupported multibase algorithm '%s'", a))
	}
}

// DecodeOnto decodes the multibase text into the caller-supplied buffer.
//
// Bytes are written from the beginning of buf; bytes after the final decoded
// byte are not touched. A buffer shorter than the decoded length fails with a
// DeserializationFailed error and writes nothing.
func (a Algorithm) DecodeOnto(text string, buf []byte) error {
	data, err := a.Decode(text)
	if err != nil {
		return err
	}
	if len(buf) < len(data) {
		return diderr.New(diderr.KindDeserializationFailed,
			fmt.Sprintf("buffer provided to decode base58 encoded string into was too small: need %d bytes, have %d", len(data), len(buf)))
	}
	copy(buf, data)
	return nil
}
