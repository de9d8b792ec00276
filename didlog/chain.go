package didlog

import (
	"fmt"
	"strings"
	"time"

	"webvh.dev/didlog/diderr"
	"webvh.dev/didlog/integrity"
	"webvh.dev/didlog/jcs"
	"webvh.dev/didlog/keys"
)

// EntryHash computes the content address that links an entry to its
// predecessor: the address of the entry with its proof removed and its
// versionId replaced by the predecessor's versionId (the SCID for the genesis
// entry). Any mutation of the entry's state, parameters or versionTime changes
// the result.
func EntryHash(e *Entry, prevVersionID string) (string, error) {
	m := e.value(false)
	m["versionId"] = prevVersionID
	var h jcs.Hasher
	return h.Base58BtcEncodeMultihash(m)
}

// NextVersionID computes the versionId the entry must carry given its
// predecessor's versionId. A predecessor that is itself a versionId yields the
// successor index; the SCID (genesis predecessor) yields index 1.
func NextVersionID(e *Entry, prevVersionID string) (string, error) {
	hash, err := EntryHash(e, prevVersionID)
	if err != nil {
		return "", err
	}
	index := uint64(1)
	if prev, _, err := ParseVersionID(prevVersionID); err == nil {
		index = prev + 1
	}
	return fmt.Sprintf("%d-%s", index, hash), nil
}

// EntryValidator checks one entry's JSON form, threading the previous entry's
// versionTime as validation context. Satisfied by the schema package's
// compiled validator.
type EntryValidator interface {
	ValidateWithPrevious(instanceText, previousVersionTime string) error
}

// VerifyOptions configures chain verification. The zero value verifies hash
// chaining, SCID binding and time ordering, and checks each entry's proofs
// against the update keys the log itself authorizes.
type VerifyOptions struct {
	// Resolver supplies verifying keys for proof verification methods. When
	// nil, verification methods are resolved against the log's active
	// updateKeys parameter.
	Resolver integrity.VerificationMethodResolver

	// Validator, when set, is applied to every entry before chain checks.
	Validator EntryValidator

	// Now bounds versionTime; defaults to time.Now.
	Now func() time.Time
}

// VerifyChain verifies an ordered DID log: version indexes increment by one
// from 1, each versionId's hash component matches the recomputed content
// address, versionTime is non-decreasing and never in the future, the SCID
// binds the DID to the genesis entry, and every embedded proof verifies.
// Entries are never mutated.
func VerifyChain(entries []*Entry, opts VerifyOptions) error {
	if len(entries) == 0 {
		return diderr.New(diderr.KindValidationError, "DID log carries no entries")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	genesis := entries[0]
	if genesis.VersionIndex() != 1 {
		return diderr.New(diderr.KindValidationError,
			fmt.Sprintf("genesis entry carries version index %d, want 1", genesis.VersionIndex()))
	}
	scid, err := genesis.SCID()
	if err != nil {
		return err
	}
	if err := VerifySCID(genesis); err != nil {
		return err
	}
	did, err := genesis.DID()
	if err != nil {
		return err
	}
	if !strings.Contains(did, scid) {
		return diderr.New(diderr.KindValidationError,
			fmt.Sprintf("DID '%s' does not embed the SCID '%s'", did, scid))
	}

	updateKeys, err := activeUpdateKeys(genesis, nil)
	if err != nil {
		return err
	}

	prevVersionID := scid
	prevTime := time.Time{}
	prevTimeText := ""
	for i, e := range entries {
		want := uint64(i) + 1
		if e.VersionIndex() != want {
			return diderr.New(diderr.KindValidationError,
				fmt.Sprintf("entry %d carries version index %d, want %d", i, e.VersionIndex(), want))
		}
		if e.VersionTime().Before(prevTime) {
			return diderr.New(diderr.KindValidationError,
				fmt.Sprintf("versionTime '%s' of entry %d is earlier than its predecessor's '%s'",
					e.VersionTimeText(), i, prevTimeText))
		}
		if e.VersionTime().After(now()) {
			return diderr.New(diderr.KindValidationError,
				fmt.Sprintf("versionTime '%s' of entry %d lies in the future", e.VersionTimeText(), i))
		}

		if opts.Validator != nil {
			text, err := e.JSONText()
			if err != nil {
				return err
			}
			if err := opts.Validator.ValidateWithPrevious(text, prevTimeText); err != nil {
				return err
			}
		}

		hash, err := EntryHash(e, prevVersionID)
		if err != nil {
			return err
		}
		if hash != e.VersionHash() {
			return diderr.New(diderr.KindValidationError,
				fmt.Sprintf("versionId hash of entry %d is '%s' but its content address is '%s'",
					i, e.VersionHash(), hash))
		}

		resolve := opts.Resolver
		if resolve == nil {
			resolve = updateKeyResolver(updateKeys)
		}
		suite := &integrity.Suite{}
		if err := suite.VerifyDocument(e.value(true), resolve); err != nil {
			return diderr.Wrap(diderr.KindInvalidDataIntegrityProof,
				fmt.Sprintf("proof verification failed for entry %d", i), err)
		}

		if i > 0 {
			updateKeys, err = activeUpdateKeys(e, updateKeys)
			if err != nil {
				return err
			}
		}
		prevVersionID = e.VersionID()
		prevTime = e.VersionTime()
		prevTimeText = e.VersionTimeText()
	}
	return nil
}

// activeUpdateKeys returns the update keys in force after the entry: the
// entry's updateKeys parameter when present, the inherited set otherwise.
func activeUpdateKeys(e *Entry, inherited []string) ([]string, error) {
	p, ok, err := e.Parameter("updateKeys")
	if err != nil {
		return nil, err
	}
	if !ok {
		return inherited, nil
	}
	return p.StringArrayValue()
}

// updateKeyResolver resolves a verification method against the authorized
// update keys: the multibase key in the method's fragment must be one of them.
func updateKeyResolver(authorized []string) integrity.VerificationMethodResolver {
	return func(verificationMethod string) (keys.VerifyingKey, error) {
		key := verificationMethod
		if i := strings.LastIndex(key, "#"); i >= 0 {
			key = key[i+1:]
		}
		for _, a := range authorized {
			if a == key {
				return keys.VerifyingKeyFromMultibase(key)
			}
		}
		return keys.VerifyingKey{}, diderr.New(diderr.KindKeyNotFound,
			fmt.Sprintf("verification method '%s' does not reference an authorized update key", verificationMethod))
	}
}
