// Package schema validates DID log entries against a JSON Schema (2020-12)
// document extended with custom keywords for the chain semantics declarative
// schema cannot express.
package schema

import (
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"webvh.dev/didlog/diderr"
)

// EntrySchema delivers a JSON schema document (UTF-8 text) fully describing a
// DID log entry.
type EntrySchema interface {
	JSONSchema() string
}

// Mode selects how many violations a validation reports.
type Mode int

const (
	// FirstError stops at the first encountered violation.
	FirstError Mode = iota
	// AllErrors surfaces every structural and semantic violation together.
	AllErrors
)

// Validator is a compiled JSON Schema validator for DID log entries.
//
// It is compiled once per schema document and is immutable afterwards, safe to
// share across concurrent callers without locking.
type Validator struct {
	schema *jsonschema.Schema

	// Mode controls short-circuiting; FirstError by default.
	Mode Mode

	// ContextProperty is where ValidateWithPrevious injects the previous
	// entry's versionTime into the instance before validation.
	ContextProperty string
}

// Compile builds a validator from schema text, registering the didEntry and
// didVersionTime keywords. Malformed schema text or a schema violating the
// 2020-12 meta-schema is returned as an error.
func Compile(schemaText string) (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaText))
	if err != nil {
		return nil, diderr.Wrap(diderr.KindDeserializationFailed, "schema is not valid JSON text", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft2020)
	compiler.AssertVocabs()
	compiler.RegisterVocabulary(entryVocabulary())
	compiler.RegisterVocabulary(versionTimeVocabulary())

	const resource = "didlog://entry-schema.json"
	if err := compiler.AddResource(resource, doc); err != nil {
		return nil, diderr.Wrap(diderr.KindDeserializationFailed, "schema document rejected", err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, diderr.Wrap(diderr.KindDeserializationFailed, "schema does not compile under draft 2020-12", err)
	}
	return &Validator{schema: compiled, ContextProperty: DefaultContextProperty}, nil
}

// NewValidator builds a validator from schema text and aborts on a malformed
// schema document: a schema that cannot compile is a deployment defect, not a
// per-request condition.
func NewValidator(schemaText string) *Validator {
	v, err := Compile(schemaText)
	if err != nil {
		panic(err)
	}
	return v
}

// NewValidatorFor builds a validator for the schema an EntrySchema delivers.
func NewValidatorFor(s EntrySchema) *Validator {
	return NewValidator(s.JSONSchema())
}

// Validate checks one JSON instance against the compiled schema.
//
// Instance text that cannot be parsed into a structured value is reported as
// DeserializationFailed; structural or semantic violations are reported as
// ValidationError, never conflated.
func (v *Validator) Validate(instanceText string) error {
	return v.ValidateWithPrevious(instanceText, "")
}

// ValidateAll checks one JSON instance and reports every violation together,
// regardless of the validator's Mode.
func (v *Validator) ValidateAll(instanceText string) error {
	all := *v
	all.Mode = AllErrors
	return all.ValidateWithPrevious(instanceText, "")
}

// ValidateWithPrevious validates an instance while threading the previous
// entry's versionTime through validation context, making the cross-entry
// time-ordering keyword effective.
func (v *Validator) ValidateWithPrevious(instanceText, previousVersionTime string) error {
	instance, err := jsonschema.UnmarshalJSON(strings.NewReader(instanceText))
	if err != nil {
		return diderr.Wrap(diderr.KindDeserializationFailed,
			"the supplied JSON instance cannot be deserialized", err)
	}
	if previousVersionTime != "" {
		obj, ok := instance.(map[string]any)
		if !ok {
			return diderr.New(diderr.KindValidationError,
				"a previous versionTime was supplied but the instance is not a JSON object")
		}
		withContext := make(map[string]any, len(obj)+1)
		for k, val := range obj {
			withContext[k] = val
		}
		withContext[v.ContextProperty] = previousVersionTime
		instance = withContext
	}

	if err := v.schema.Validate(instance); err != nil {
		return diderr.Wrap(diderr.KindValidationError, v.describe(err), err)
	}
	return nil
}

// describe renders a validation failure according to the validator's Mode.
func (v *Validator) describe(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	leaves := leafErrors(ve)
	if len(leaves) == 0 {
		return ve.Error()
	}
	if v.Mode == FirstError {
		return leaves[0].Error()
	}
	msgs := make([]string, len(leaves))
	for i, leaf := range leaves {
		msgs[i] = leaf.Error()
	}
	return fmt.Sprintf("%d violation(s): %s", len(leaves), strings.Join(msgs, "; "))
}

func leafErrors(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var leaves []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		leaves = append(leaves, leafErrors(cause)...)
	}
	return leaves
}
