// Package cidutil derives IPFS-compatible content identifiers for canonical
// DID log entry bytes, for archival references printed by the CLI.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"webvh.dev/didlog/diderr"
	"webvh.dev/didlog/didlog"
	"webvh.dev/didlog/jcs"
)

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec
// and a sha2-256 multihash.
func CIDv1RawSHA256(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1 length,
		// this should be unreachable.
		return ""
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// EntryCID returns the archival CIDv1 of an entry's canonical JSON bytes.
// The address is over the complete entry, proof included, so it identifies
// exactly the bytes a log line archives.
func EntryCID(e *didlog.Entry) (string, error) {
	text, err := e.JSONText()
	if err != nil {
		return "", err
	}
	canonical, err := jcs.CanonicalizeRaw([]byte(text))
	if err != nil {
		return "", err
	}
	c, err := CIDv1RawSHA256CID(canonical)
	if err != nil {
		return "", diderr.Wrap(diderr.KindSerializationFailed, "CID derivation failed", err)
	}
	return c.String(), nil
}
