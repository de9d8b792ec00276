// Package integrity implements the eddsa-jcs-2022 Data Integrity Proof
// cryptosuite: detached Ed25519 signatures over JCS-canonicalized
// document+options pairs.
package integrity

import (
	"encoding/json"
	"fmt"
	"time"

	"webvh.dev/didlog/diderr"
)

const (
	// ProofType is the W3C Data Integrity proof type.
	ProofType = "DataIntegrityProof"
	// CryptosuiteName identifies the EdDSA/JCS cryptosuite this package
	// implements.
	CryptosuiteName = "eddsa-jcs-2022"
)

// ProofOptions is the unsigned portion of a Data Integrity Proof. It is owned
// transiently during proof creation and never persisted without a proofValue.
type ProofOptions struct {
	// Created is the proof creation time; supplied by the caller so that
	// proof creation stays reproducible.
	Created time.Time
	// VerificationMethod references the key a verifier must resolve.
	VerificationMethod string
	// ProofPurpose is e.g. "assertionMethod" or "authentication".
	ProofPurpose string
	// Challenge binds the proof to a versionId ("<index>-<scid>") or another
	// caller-chosen nonce. Optional.
	Challenge string
	// Domain scopes the proof to a relying party. Optional.
	Domain string
	// Context carries extra JSON-LD contexts into the proof. Optional.
	Context []string
}

// validate reports a structurally incomplete set of options.
func (o ProofOptions) validate() error {
	if o.VerificationMethod == "" {
		return diderr.New(diderr.KindInvalidDataIntegrityProof, "proof options lack a verification method")
	}
	if o.ProofPurpose == "" {
		return diderr.New(diderr.KindInvalidDataIntegrityProof, "proof options lack a proof purpose")
	}
	return nil
}

// asMap returns the JSON object form of the options, the exact value that is
// canonicalized and hashed during proof creation.
func (o ProofOptions) asMap() map[string]any {
	m := map[string]any{
		"type":               ProofType,
		"cryptosuite":        CryptosuiteName,
		"verificationMethod": o.VerificationMethod,
		"proofPurpose":       o.ProofPurpose,
	}
	if !o.Created.IsZero() {
		// Second precision: the signed timestamp and the displayed one must
		// be the same text.
		m["created"] = o.Created.UTC().Truncate(time.Second).Format(time.RFC3339)
	}
	if o.Challenge != "" {
		m["challenge"] = o.Challenge
	}
	if o.Domain != "" {
		m["domain"] = o.Domain
	}
	if len(o.Context) > 0 {
		ctx := make([]any, len(o.Context))
		for i, c := range o.Context {
			ctx[i] = c
		}
		m["@context"] = ctx
	}
	return m
}

// Proof is a complete Data Integrity Proof: options plus proofValue.
//
// The options are kept as the raw JSON object so that verification hashes
// exactly the fields the proof carries, including ones this package does not
// interpret.
type Proof struct {
	options    map[string]any
	proofValue string
}

// ParseProof parses a proof from JSON text. The text may be a single proof
// object or a proof array, in which case the first element is taken.
func ParseProof(text string) (*Proof, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, diderr.Wrap(diderr.KindDeserializationFailed, "proof is not valid JSON text", err)
	}
	return ProofFromValue(v)
}

// ProofFromValue builds a proof from a decoded JSON value.
func ProofFromValue(v any) (*Proof, error) {
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return nil, diderr.New(diderr.KindInvalidDataIntegrityProof, "proof array is empty")
		}
		v = arr[0]
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, diderr.New(diderr.KindInvalidDataIntegrityProof, "proof must be a JSON object")
	}
	options := make(map[string]any, len(obj))
	for k, val := range obj {
		options[k] = val
	}
	proofValue, _ := options["proofValue"].(string)
	delete(options, "proofValue")
	p := &Proof{options: options, proofValue: proofValue}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Proof) validate() error {
	if p.Type() != ProofType {
		return diderr.New(diderr.KindInvalidDataIntegrityProof,
			fmt.Sprintf("unsupported proof type '%s'", p.Type()))
	}
	if p.Cryptosuite() != CryptosuiteName {
		return diderr.New(diderr.KindInvalidDataIntegrityProof,
			fmt.Sprintf("unsupported cryptosuite '%s'", p.Cryptosuite()))
	}
	if p.VerificationMethod() == "" {
		return diderr.New(diderr.KindInvalidDataIntegrityProof, "proof lacks a verification method")
	}
	if p.proofValue == "" {
		return diderr.New(diderr.KindInvalidDataIntegrityProof, "proof lacks a proofValue")
	}
	return nil
}

func (p *Proof) stringField(name string) string {
	s, _ := p.options[name].(string)
	return s
}

func (p *Proof) Type() string               { return p.stringField("type") }
func (p *Proof) Cryptosuite() string        { return p.stringField("cryptosuite") }
func (p *Proof) Created() string            { return p.stringField("created") }
func (p *Proof) VerificationMethod() string { return p.stringField("verificationMethod") }
func (p *Proof) ProofPurpose() string       { return p.stringField("proofPurpose") }
func (p *Proof) Challenge() string          { return p.stringField("challenge") }
func (p *Proof) Domain() string             { return p.stringField("domain") }

// ProofValue returns the multibase-encoded signature.
func (p *Proof) ProofValue() string { return p.proofValue }

// OptionsMap returns a copy of the proof's options (everything except
// proofValue), the value whose canonical hash enters the signing input.
func (p *Proof) OptionsMap() map[string]any {
	m := make(map[string]any, len(p.options))
	for k, v := range p.options {
		m[k] = v
	}
	return m
}
