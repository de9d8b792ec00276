// Package didlog models DID log entries and verifies the hash chain that
// links them: versionId computation, SCID binding, time ordering and embedded
// proof verification over an ordered entry sequence.
package didlog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"webvh.dev/didlog/diderr"
	"webvh.dev/didlog/param"
)

// Entry is one versioned DID state transition. It is immutable after
// construction; accessors hand out copies of the mutable members.
type Entry struct {
	versionID       string
	versionIndex    uint64
	versionHash     string
	versionTime     time.Time
	versionTimeText string
	parameters      map[string]any
	state           map[string]any
	proofs          []any
}

// ParseEntry parses one complete log entry from JSON text. Entries in a log
// always carry a well-formed versionId, an RFC 3339 versionTime, parameters
// and state objects and at least one proof.
func ParseEntry(text string) (*Entry, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, diderr.Wrap(diderr.KindDeserializationFailed, "DID log entry is not valid JSON text", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, diderr.New(diderr.KindDeserializationFailed, "DID log entry must be a JSON object")
	}

	versionID, ok := obj["versionId"].(string)
	if !ok {
		return nil, diderr.New(diderr.KindDeserializationFailed, "DID log entry lacks a string versionId")
	}
	index, hash, err := ParseVersionID(versionID)
	if err != nil {
		return nil, err
	}

	timeText, ok := obj["versionTime"].(string)
	if !ok {
		return nil, diderr.New(diderr.KindDeserializationFailed, "DID log entry lacks a string versionTime")
	}
	versionTime, err := time.Parse(time.RFC3339, timeText)
	if err != nil {
		return nil, diderr.Wrap(diderr.KindDeserializationFailed,
			fmt.Sprintf("versionTime '%s' is not a valid RFC 3339 timestamp", timeText), err)
	}

	parameters, ok := obj["parameters"].(map[string]any)
	if !ok {
		return nil, diderr.New(diderr.KindDeserializationFailed, "DID log entry lacks a parameters object")
	}
	state, ok := obj["state"].(map[string]any)
	if !ok {
		return nil, diderr.New(diderr.KindDeserializationFailed, "DID log entry lacks a state object")
	}
	proofs, ok := obj["proof"].([]any)
	if !ok || len(proofs) == 0 {
		return nil, diderr.New(diderr.KindDeserializationFailed, "DID log entry lacks a non-empty proof array")
	}

	return &Entry{
		versionID:       versionID,
		versionIndex:    index,
		versionHash:     hash,
		versionTime:     versionTime,
		versionTimeText: timeText,
		parameters:      parameters,
		state:           state,
		proofs:          proofs,
	}, nil
}

// NewEntry builds an entry from already-decoded members. An empty versionID
// produces a draft entry (index 0) whose versionId is yet to be computed via
// NextVersionID; a non-empty one must be well formed.
func NewEntry(versionID string, versionTime time.Time, parameters, state map[string]any, proofs []any) (*Entry, error) {
	e := &Entry{
		versionTime:     versionTime.UTC(),
		versionTimeText: versionTime.UTC().Format("2006-01-02T15:04:05Z"),
		parameters:      copyMap(parameters),
		state:           copyMap(state),
		proofs:          append([]any(nil), proofs...),
	}
	if versionID != "" {
		index, hash, err := ParseVersionID(versionID)
		if err != nil {
			return nil, err
		}
		e.versionID = versionID
		e.versionIndex = index
		e.versionHash = hash
	}
	return e, nil
}

// WithVersionID returns a copy of the entry carrying the given versionId.
func (e *Entry) WithVersionID(versionID string) (*Entry, error) {
	index, hash, err := ParseVersionID(versionID)
	if err != nil {
		return nil, err
	}
	clone := *e
	clone.versionID = versionID
	clone.versionIndex = index
	clone.versionHash = hash
	return &clone, nil
}

// WithProofs returns a copy of the entry carrying the given proof array.
func (e *Entry) WithProofs(proofs []any) *Entry {
	clone := *e
	clone.proofs = append([]any(nil), proofs...)
	return &clone
}

func (e *Entry) VersionID() string       { return e.versionID }
func (e *Entry) VersionIndex() uint64    { return e.versionIndex }
func (e *Entry) VersionHash() string     { return e.versionHash }
func (e *Entry) VersionTime() time.Time  { return e.versionTime }
func (e *Entry) VersionTimeText() string { return e.versionTimeText }

// Parameters returns a copy of the entry's method parameter object.
func (e *Entry) Parameters() map[string]any { return copyMap(e.parameters) }

// State returns a copy of the entry's DID document state payload.
func (e *Entry) State() map[string]any { return copyMap(e.state) }

// Proofs returns a copy of the entry's proof array.
func (e *Entry) Proofs() []any { return append([]any(nil), e.proofs...) }

// Parameter returns the named method parameter as a tagged value. The second
// result reports whether the parameter is present at all.
func (e *Entry) Parameter(name string) (param.Parameter, bool, error) {
	v, ok := e.parameters[name]
	if !ok {
		return param.Parameter{}, false, nil
	}
	text, err := json.Marshal(v)
	if err != nil {
		return param.Parameter{}, true, diderr.Wrap(diderr.KindSerializationFailed,
			fmt.Sprintf("DID method parameter '%s' cannot be serialized", name), err)
	}
	p, err := param.FromJSON(name, string(text))
	return p, true, err
}

// SCID returns the self-certifying identifier the entry's parameters declare.
func (e *Entry) SCID() (string, error) {
	p, ok, err := e.Parameter("scid")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", diderr.New(diderr.KindInvalidDidMethodParameter, "DID method parameter omitted: scid")
	}
	return p.StringValue()
}

// DID returns the DID string the entry's state declares as its id.
func (e *Entry) DID() (string, error) {
	did, ok := e.state["id"].(string)
	if !ok || did == "" {
		return "", diderr.New(diderr.KindValidationError, "DID document state lacks a string id")
	}
	return did, nil
}

// value returns the entry's JSON object form, the shape that is serialized,
// hashed and validated.
func (e *Entry) value(includeProof bool) map[string]any {
	m := map[string]any{
		"versionId":   e.versionID,
		"versionTime": e.versionTimeText,
		"parameters":  e.parameters,
		"state":       e.state,
	}
	if includeProof {
		m["proof"] = e.proofs
	}
	return m
}

// JSONText serializes the entry back to its JSON line form.
func (e *Entry) JSONText() (string, error) {
	b, err := json.Marshal(e.value(true))
	if err != nil {
		return "", diderr.Wrap(diderr.KindSerializationFailed, "DID log entry cannot be serialized", err)
	}
	return string(b), nil
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ParseVersionID splits a versionId into its index and hash components. The
// index must be a positive integer without leading zeros and the hash a
// base58btc multibase string.
func ParseVersionID(versionID string) (uint64, string, error) {
	sep := strings.Index(versionID, "-")
	if sep <= 0 || sep == len(versionID)-1 {
		return 0, "", diderr.New(diderr.KindDeserializationFailed,
			fmt.Sprintf("versionId '%s' is not of the form '<versionIndex>-<multihash>'", versionID))
	}
	indexText, hash := versionID[:sep], versionID[sep+1:]
	index, err := strconv.ParseUint(indexText, 10, 64)
	if err != nil || index == 0 || (len(indexText) > 1 && indexText[0] == '0') {
		return 0, "", diderr.New(diderr.KindDeserializationFailed,
			fmt.Sprintf("versionId '%s' does not carry a positive version index", versionID))
	}
	if !strings.HasPrefix(hash, "z") {
		return 0, "", diderr.New(diderr.KindDeserializationFailed,
			fmt.Sprintf("versionId '%s' does not carry a base58btc multibase hash", versionID))
	}
	return index, hash, nil
}
