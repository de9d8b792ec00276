package didlog

import (
	"encoding/json"
	"strings"

	"webvh.dev/didlog/codec"
	"webvh.dev/didlog/diderr"
	"webvh.dev/didlog/jcs"
)

// SCIDPlaceholder stands in for the self-certifying identifier while the
// genesis entry's content address is being computed. Substituting it back for
// every occurrence of the SCID reproduces the preliminary entry the address
// was derived from.
const SCIDPlaceholder = "{SCID}"

// ComputeSCID recomputes the self-certifying identifier from a genesis entry:
// the content address of the entry with its proof removed, its versionId set
// to the placeholder and every occurrence of the declared SCID replaced by the
// placeholder. A result differing from the declared SCID means the genesis
// state was not the one the identifier certifies.
func ComputeSCID(genesis *Entry) (string, error) {
	scid, err := genesis.SCID()
	if err != nil {
		return "", err
	}
	return computeSCID(genesis, scid)
}

func computeSCID(genesis *Entry, scid string) (string, error) {
	m := genesis.value(false)
	m["versionId"] = SCIDPlaceholder
	b, err := json.Marshal(m)
	if err != nil {
		return "", diderr.Wrap(diderr.KindSerializationFailed, "genesis entry cannot be serialized", err)
	}
	canonical, err := jcs.CanonicalizeRaw(b)
	if err != nil {
		return "", err
	}
	// Base58 text contains no JSON metacharacters, so substituting in the
	// canonical text cannot change its structure.
	preliminary := strings.ReplaceAll(string(canonical), scid, SCIDPlaceholder)
	mh, err := codec.SHA2_256.EncodeMultihash([]byte(preliminary))
	if err != nil {
		return "", err
	}
	return codec.Base58Btc.Encode(mh), nil
}

// VerifySCID checks that the genesis entry's declared SCID equals the content
// address recomputed from the entry itself.
func VerifySCID(genesis *Entry) error {
	scid, err := genesis.SCID()
	if err != nil {
		return err
	}
	computed, err := computeSCID(genesis, scid)
	if err != nil {
		return err
	}
	if computed != scid {
		return diderr.New(diderr.KindValidationError,
			"declared SCID '"+scid+"' does not match the content address '"+computed+"' of the genesis entry")
	}
	return nil
}
