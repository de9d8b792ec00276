package integrity

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"webvh.dev/didlog/codec"
	"webvh.dev/didlog/diderr"
	"webvh.dev/didlog/jcs"
	"webvh.dev/didlog/keys"
)

// VerificationMethodResolver supplies the verifying key for a proof's
// verification-method reference. Resolution itself (DID document lookup, key
// registries) lives outside this package; a reference the resolver cannot
// satisfy must be reported as a KeyNotFound error.
type VerificationMethodResolver func(verificationMethod string) (keys.VerifyingKey, error)

// Suite is the eddsa-jcs-2022 cryptosuite over a key pair. Either half may be
// absent: a verify-only suite needs no signing key and vice versa.
//
// A Suite is immutable after construction and safe to share across concurrent
// callers.
type Suite struct {
	SigningKey   keys.SigningKey
	VerifyingKey keys.VerifyingKey

	// Hasher defaults to sha2-256, the digest the cryptosuite mandates.
	Hasher jcs.Hasher
}

// signingInput is optsHash || docHash, in that fixed order.
func (s *Suite) signingInput(optionsValue any, docHash []byte) ([]byte, error) {
	optsHash, err := s.Hasher.SumCanonical(optionsValue)
	if err != nil {
		return nil, err
	}
	return append(optsHash, docHash...), nil
}

// AddProof signs the unsecured document and returns a copy carrying the new
// proof in its `proof` array. The input document must not contain a `proof`
// member; the operation never mutates it.
func (s *Suite) AddProof(doc map[string]any, opts ProofOptions) (map[string]any, error) {
	if s.SigningKey.IsZero() {
		return nil, diderr.New(diderr.KindInvalidDataIntegrityProof, "suite holds no signing key")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if _, exists := doc["proof"]; exists {
		return nil, diderr.New(diderr.KindInvalidDataIntegrityProof,
			"document to secure must not already contain a proof member")
	}
	if opts.Challenge == "" {
		// Default challenge: "1-<scid>" over the unsecured document, with the
		// SCID in its prefixless base58 text form.
		scid, err := s.Hasher.Base58EncodeMultihash(doc)
		if err != nil {
			return nil, err
		}
		opts.Challenge = "1-" + scid
	}

	docHash, err := s.Hasher.SumCanonical(doc)
	if err != nil {
		return nil, err
	}
	proofEntry := opts.asMap()
	input, err := s.signingInput(proofEntry, docHash)
	if err != nil {
		return nil, err
	}
	sig := ed25519.Sign(s.SigningKey.Bytes(), input)
	proofEntry["proofValue"] = codec.Base58Btc.Encode(sig)

	secured := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		secured[k] = v
	}
	secured["proof"] = []any{proofEntry}
	return secured, nil
}

// VerifyProof checks a single proof against the hex digest of the
// canonicalized document the proof covers.
func (s *Suite) VerifyProof(proof *Proof, docHashHex string) error {
	if s.VerifyingKey.IsZero() {
		return diderr.New(diderr.KindInvalidDataIntegrityProof, "suite holds no verifying key")
	}
	if err := proof.validate(); err != nil {
		return err
	}
	docHash, err := hex.DecodeString(docHashHex)
	if err != nil {
		return diderr.Wrap(diderr.KindDeserializationFailed, "document hash is not valid hex", err)
	}

	sig, err := codec.Base58Btc.Decode(proof.ProofValue())
	if err != nil {
		return err
	}
	if len(sig) != ed25519.SignatureSize {
		return diderr.New(diderr.KindInvalidDataIntegrityProof,
			fmt.Sprintf("proofValue must decode to %d signature bytes, got %d", ed25519.SignatureSize, len(sig)))
	}

	input, err := s.signingInput(proof.OptionsMap(), docHash)
	if err != nil {
		return err
	}
	if !ed25519.Verify(s.VerifyingKey.Bytes(), input, sig) {
		return diderr.New(diderr.KindInvalidDataIntegrityProof, "signature does not match signing input")
	}
	return nil
}

// VerifyDocument verifies every proof embedded in a secured document.
//
// The document hash is recomputed from the document with the `proof` member
// removed, never trusted from the caller. Each proof is verified
// independently against the key the injected resolver returns for its
// verification method; which subset of proofs a caller requires is policy
// outside this package. The document is never mutated.
func (s *Suite) VerifyDocument(doc map[string]any, resolve VerificationMethodResolver) error {
	proofMember, ok := doc["proof"]
	if !ok {
		return diderr.New(diderr.KindInvalidDataIntegrityProof, "document carries no proof member")
	}

	unsecured := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == "proof" {
			continue
		}
		unsecured[k] = v
	}
	docHashHex, err := s.Hasher.EncodeHex(unsecured)
	if err != nil {
		return err
	}

	proofValues, ok := proofMember.([]any)
	if !ok {
		proofValues = []any{proofMember}
	}
	if len(proofValues) == 0 {
		return diderr.New(diderr.KindInvalidDataIntegrityProof, "document proof array is empty")
	}
	for i, pv := range proofValues {
		proof, err := ProofFromValue(pv)
		if err != nil {
			return err
		}
		verifying, err := resolve(proof.VerificationMethod())
		if err != nil {
			return diderr.Wrap(diderr.KindKeyNotFound,
				fmt.Sprintf("verification method '%s' of proof %d cannot be resolved", proof.VerificationMethod(), i), err)
		}
		verifier := &Suite{VerifyingKey: verifying, Hasher: s.Hasher}
		if err := verifier.VerifyProof(proof, docHashHex); err != nil {
			return err
		}
	}
	return nil
}
