package codec

import (
	"crypto/sha256"
	"fmt"

	"github.com/multiformats/go-multihash"
	"golang.org/x/crypto/sha3"

	"webvh.dev/didlog/diderr"
)

// DigestAlgorithm selects the hash function wrapped by the multihash prefix.
//
// The DID log protocol pins sha2-256; sha3-256 is carried so the selection
// stays an explicit tag rather than a hardcoded constant.
type DigestAlgorithm int

const (
	SHA2_256 DigestAlgorithm = iota
	SHA3_256
)

func (d DigestAlgorithm) String() string {
	switch d {
	case SHA2_256:
		return "sha2-256"
	case SHA3_256:
		return "sha3-256"
	default:
		return fmt.Sprintf("DigestAlgorithm(%d)", int(d))
	}
}

// code returns the multicodec function code for the digest algorithm.
func (d DigestAlgorithm) code() (uint64, error) {
	switch d {
	case SHA2_256:
		return multihash.SHA2_256, nil
	case SHA3_256:
		return multihash.SHA3_256, nil
	default:
		return 0, diderr.New(diderr.KindSerializationFailed,
			fmt.Sprintf("unsupported digest algorithm '%s'", d))
	}
}

// Sum returns the raw digest of data.
func (d DigestAlgorithm) Sum(data []byte) ([]byte, error) {
	switch d {
	case SHA2_256:
		s := sha256.Sum256(data)
		return s[:], nil
	case SHA3_256:
		s := sha3.Sum256(data)
		return s[:], nil
	default:
		return nil, diderr.New(diderr.KindSerializationFailed,
			fmt.Sprintf("unsupported digest algorithm '%s'", d))
	}
}

// EncodeMultihash digests data and prefixes the result with the
// self-describing multihash function/length header.
func (d DigestAlgorithm) EncodeMultihash(data []byte) ([]byte, error) {
	digest, err := d.Sum(data)
	if err != nil {
		return nil, err
	}
	code, err := d.code()
	if err != nil {
		return nil, err
	}
	mh, err := multihash.Encode(digest, code)
	if err != nil {
		return nil, diderr.Wrap(diderr.KindSerializationFailed, "multihash encoding failed", err)
	}
	return mh, nil
}

// DecodeMultihash unwraps a multihash and returns the bare digest bytes.
//
// A declared length that does not match the digest is a DeserializationFailed
// error, never silently truncated or padded.
func DecodeMultihash(mh []byte) ([]byte, error) {
	decoded, err := multihash.Decode(mh)
	if err != nil {
		return nil, diderr.Wrap(diderr.KindDeserializationFailed, "invalid multihash", err)
	}
	if decoded.Length != len(decoded.Digest) {
		return nil, diderr.New(diderr.KindDeserializationFailed,
			fmt.Sprintf("multihash declares %d digest bytes but carries %d", decoded.Length, len(decoded.Digest)))
	}
	return decoded.Digest, nil
}
