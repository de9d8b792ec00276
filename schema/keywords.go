package schema

import (
	"fmt"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/message"

	"webvh.dev/didlog/didlog"
)

// Custom keyword names. Both are registered into the validator at compile
// time via a name + factory pair; the validator core stays keyword-agnostic.
const (
	EntryKeyword       = "didEntry"
	VersionTimeKeyword = "didVersionTime"
)

// DefaultContextProperty is the instance property the version-time keyword
// reads the previous entry's timestamp from when the schema does not name one.
const DefaultContextProperty = "previousVersionTime"

// keywordError is the ErrorKind reported by both custom keywords.
type keywordError struct {
	keyword string
	msg     string
}

func (k *keywordError) KeywordPath() []string { return []string{k.keyword} }

func (k *keywordError) LocalizedString(p *message.Printer) string {
	return p.Sprintf("%s", k.msg)
}

// --- didEntry ---

// entryShape enforces the cross-field shape of a DID log entry that the
// declarative schema cannot express compactly: member presence and types,
// versionId/versionIndex agreement, and Proof-Options-shaped proof elements.
// One error is reported per violated sub-constraint.
type entryShape struct{}

func (entryShape) Validate(ctx *jsonschema.ValidatorContext, v any) {
	entry, ok := v.(map[string]any)
	if !ok {
		ctx.AddError(&keywordError{EntryKeyword, "DID log entry must be a JSON object"})
		return
	}

	versionID, ok := entry["versionId"].(string)
	if !ok || versionID == "" {
		ctx.AddError(&keywordError{EntryKeyword, "entry lacks a non-empty string versionId"})
	} else {
		index, _, err := didlog.ParseVersionID(versionID)
		if err != nil {
			ctx.AddError(&keywordError{EntryKeyword, fmt.Sprintf("versionId '%s' is malformed: %v", versionID, err)})
		} else if declared, present := entry["versionIndex"]; present {
			if !numberEquals(declared, index) {
				ctx.AddError(&keywordError{EntryKeyword,
					fmt.Sprintf("versionIndex %v disagrees with versionId '%s'", declared, versionID)})
			}
		}
	}

	if _, ok := entry["versionTime"].(string); !ok {
		ctx.AddError(&keywordError{EntryKeyword, "entry lacks a string versionTime"})
	}
	if _, ok := entry["parameters"].(map[string]any); !ok {
		ctx.AddError(&keywordError{EntryKeyword, "entry lacks a parameters object"})
	}
	if _, ok := entry["state"].(map[string]any); !ok {
		ctx.AddError(&keywordError{EntryKeyword, "entry lacks a state object"})
	}

	proofs, ok := entry["proof"].([]any)
	if !ok || len(proofs) == 0 {
		ctx.AddError(&keywordError{EntryKeyword, "entry lacks a non-empty proof array"})
		return
	}
	for i, pv := range proofs {
		proof, ok := pv.(map[string]any)
		if !ok {
			ctx.AddError(&keywordError{EntryKeyword, fmt.Sprintf("proof %d is not a JSON object", i)})
			continue
		}
		for _, member := range []string{"type", "cryptosuite", "verificationMethod", "proofPurpose", "proofValue"} {
			if s, ok := proof[member].(string); !ok || s == "" {
				ctx.AddError(&keywordError{EntryKeyword,
					fmt.Sprintf("proof %d lacks a non-empty string '%s' member", i, member)})
			}
		}
	}
}

func numberEquals(v any, want uint64) bool {
	switch n := v.(type) {
	case float64:
		return n == float64(want)
	case int:
		return n >= 0 && uint64(n) == want
	case int64:
		return n >= 0 && uint64(n) == want
	case uint64:
		return n == want
	case fmt.Stringer:
		return n.String() == fmt.Sprintf("%d", want)
	default:
		return false
	}
}

func compileEntryShape(ctx *jsonschema.CompilerContext, obj map[string]any) (jsonschema.SchemaExt, error) {
	raw, ok := obj[EntryKeyword]
	if !ok {
		return nil, nil
	}
	enabled, ok := raw.(bool)
	if !ok {
		return nil, fmt.Errorf("%s must be a boolean", EntryKeyword)
	}
	if !enabled {
		return nil, nil
	}
	return entryShape{}, nil
}

func entryVocabulary() *jsonschema.Vocabulary {
	url := "https://webvh.dev/meta/did-entry"
	sch, err := metaSchema(url, fmt.Sprintf(`{
		"properties": {
			"%s": { "type": "boolean" }
		}
	}`, EntryKeyword))
	if err != nil {
		panic(err)
	}
	return &jsonschema.Vocabulary{
		URL:     url,
		Schema:  sch,
		Compile: compileEntryShape,
	}
}

// --- didVersionTime ---

// versionTime enforces that an entry's versionTime parses as RFC 3339 and is
// not earlier than the previous entry's timestamp. The comparison value is
// threaded through validation context: the caller injects it into the
// instance under the property this keyword names.
type versionTime struct {
	contextProperty string
}

func (k versionTime) Validate(ctx *jsonschema.ValidatorContext, v any) {
	entry, ok := v.(map[string]any)
	if !ok {
		return
	}
	raw, ok := entry["versionTime"].(string)
	if !ok {
		// Presence/type is the entry-shape keyword's concern.
		return
	}
	current, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		ctx.AddError(&keywordError{VersionTimeKeyword,
			fmt.Sprintf("versionTime '%s' is not a valid RFC 3339 timestamp", raw)})
		return
	}

	prevRaw, ok := entry[k.contextProperty].(string)
	if !ok || prevRaw == "" {
		// Genesis entry, or the caller supplied no comparison value.
		return
	}
	previous, err := time.Parse(time.RFC3339, prevRaw)
	if err != nil {
		ctx.AddError(&keywordError{VersionTimeKeyword,
			fmt.Sprintf("previous versionTime '%s' is not a valid RFC 3339 timestamp", prevRaw)})
		return
	}
	if current.Before(previous) {
		ctx.AddError(&keywordError{VersionTimeKeyword,
			fmt.Sprintf("versionTime '%s' is earlier than the previous entry's '%s'", raw, prevRaw)})
	}
}

func compileVersionTime(ctx *jsonschema.CompilerContext, obj map[string]any) (jsonschema.SchemaExt, error) {
	raw, ok := obj[VersionTimeKeyword]
	if !ok {
		return nil, nil
	}
	switch arg := raw.(type) {
	case bool:
		if !arg {
			return nil, nil
		}
		return versionTime{contextProperty: DefaultContextProperty}, nil
	case string:
		if strings.TrimSpace(arg) == "" {
			return nil, fmt.Errorf("%s property name must not be empty", VersionTimeKeyword)
		}
		return versionTime{contextProperty: arg}, nil
	default:
		return nil, fmt.Errorf("%s must be a boolean or a property name", VersionTimeKeyword)
	}
}

func versionTimeVocabulary() *jsonschema.Vocabulary {
	url := "https://webvh.dev/meta/did-version-time"
	sch, err := metaSchema(url, fmt.Sprintf(`{
		"properties": {
			"%s": { "type": ["boolean", "string"] }
		}
	}`, VersionTimeKeyword))
	if err != nil {
		panic(err)
	}
	return &jsonschema.Vocabulary{
		URL:     url,
		Schema:  sch,
		Compile: compileVersionTime,
	}
}

func metaSchema(url, text string) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
}
