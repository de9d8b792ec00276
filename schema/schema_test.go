package schema

import (
	"strings"
	"testing"

	"webvh.dev/didlog/diderr"
)

const validEntry = `{
	"versionId": "1-zQmXoypizjW3WknFiJnKLwHCnL72vedxjQkDDP1mXWo6uco",
	"versionTime": "2025-03-01T12:00:00Z",
	"parameters": {"scid": "zQmScid", "updateKeys": ["z6MkA"]},
	"state": {"id": "did:webvh:zQmScid:example.com"},
	"proof": [{
		"type": "DataIntegrityProof",
		"cryptosuite": "eddsa-jcs-2022",
		"verificationMethod": "did:key:z6MkA#z6MkA",
		"proofPurpose": "assertionMethod",
		"proofValue": "z3sig",
		"created": "2025-03-01T12:00:00Z"
	}]
}`

func v1Validator(t *testing.T) *Validator {
	t.Helper()
	v, err := Compile(V1Schema{}.JSONSchema())
	if err != nil {
		t.Fatalf("compile embedded schema: %v", err)
	}
	return v
}

func TestValidEntryPasses(t *testing.T) {
	if err := v1Validator(t).Validate(validEntry); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}
}

func TestUnparseableInstanceIsDeserializationError(t *testing.T) {
	err := v1Validator(t).Validate(`{"versionId":`)
	if !diderr.IsKind(err, diderr.KindDeserializationFailed) {
		t.Fatalf("want DeserializationFailed, got %v", err)
	}
}

func TestMissingProofFails(t *testing.T) {
	entry := strings.Replace(validEntry, `"proof": [{`, `"notproof": [{`, 1)
	err := v1Validator(t).Validate(entry)
	if !diderr.IsKind(err, diderr.KindValidationError) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestEmptyProofArrayFails(t *testing.T) {
	v := v1Validator(t)
	entry := `{
		"versionId": "1-zQmXoypizjW3WknFiJnKLwHCnL72vedxjQkDDP1mXWo6uco",
		"versionTime": "2025-03-01T12:00:00Z",
		"parameters": {},
		"state": {},
		"proof": []
	}`
	if err := v.Validate(entry); !diderr.IsKind(err, diderr.KindValidationError) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestProofElementMissingMemberFails(t *testing.T) {
	entry := strings.Replace(validEntry, `"proofValue": "z3sig",`, ``, 1)
	err := v1Validator(t).Validate(entry)
	if !diderr.IsKind(err, diderr.KindValidationError) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "proofValue") {
		t.Fatalf("error does not name the missing member: %v", err)
	}
}

func TestZeroVersionIndexFails(t *testing.T) {
	entry := strings.Replace(validEntry, `"1-zQm`, `"0-zQm`, 1)
	err := v1Validator(t).Validate(entry)
	if !diderr.IsKind(err, diderr.KindValidationError) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestDeclaredVersionIndexMismatchFails(t *testing.T) {
	entry := strings.Replace(validEntry, `"versionTime"`, `"versionIndex": 2, "versionTime"`, 1)
	err := v1Validator(t).Validate(entry)
	if !diderr.IsKind(err, diderr.KindValidationError) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestMalformedVersionTimeFails(t *testing.T) {
	entry := strings.Replace(validEntry, "2025-03-01T12:00:00Z", "yesterday at noon", 1)
	err := v1Validator(t).Validate(entry)
	if !diderr.IsKind(err, diderr.KindValidationError) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestVersionTimeOrdering(t *testing.T) {
	v := v1Validator(t)

	if err := v.ValidateWithPrevious(validEntry, "2025-03-01T11:00:00Z"); err != nil {
		t.Fatalf("later versionTime rejected: %v", err)
	}
	if err := v.ValidateWithPrevious(validEntry, "2025-03-01T12:00:00Z"); err != nil {
		t.Fatalf("equal versionTime rejected: %v", err)
	}

	err := v.ValidateWithPrevious(validEntry, "2025-03-02T12:00:00Z")
	if !diderr.IsKind(err, diderr.KindValidationError) {
		t.Fatalf("want ValidationError for earlier versionTime, got %v", err)
	}
	if !strings.Contains(err.Error(), "2025-03-01T12:00:00Z") || !strings.Contains(err.Error(), "2025-03-02T12:00:00Z") {
		t.Fatalf("error does not name both timestamps: %v", err)
	}
}

func TestAllErrorsModeReportsEveryViolation(t *testing.T) {
	v := v1Validator(t)
	v.Mode = AllErrors
	entry := `{
		"versionId": "1-zQmXoypizjW3WknFiJnKLwHCnL72vedxjQkDDP1mXWo6uco",
		"versionTime": "not a timestamp",
		"parameters": {},
		"state": {},
		"proof": [{}]
	}`
	err := v.Validate(entry)
	if !diderr.IsKind(err, diderr.KindValidationError) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "proofPurpose") || !strings.Contains(msg, "not a timestamp") {
		t.Fatalf("all-errors mode dropped violations: %v", err)
	}
}

func TestCompileRejectsMalformedSchemaText(t *testing.T) {
	if _, err := Compile(`{"type":`); err == nil {
		t.Fatalf("malformed schema text compiled")
	}
}

func TestNewValidatorPanicsOnMalformedSchema(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("NewValidator did not panic on malformed schema text")
		}
	}()
	NewValidator(`{"didVersionTime": 7}`)
}

func TestValidatorForEntrySchema(t *testing.T) {
	v := NewValidatorFor(V1Schema{})
	if err := v.Validate(validEntry); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}
}
