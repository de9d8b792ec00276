package param

import (
	"encoding/json"
	"testing"

	"webvh.dev/didlog/diderr"
)

func TestFromJSONTagsShapes(t *testing.T) {
	cases := []struct {
		text string
		kind Kind
	}{
		{`null`, Null},
		{`true`, Bool},
		{`"zQmSCID"`, String},
		{`42`, Number},
		{`["z6MkA","z6MkB"]`, StringArray},
		{`[1,2]`, Array},
		{`{"threshold":2}`, Object},
	}
	for _, c := range cases {
		p, err := FromJSON("x", c.text)
		if err != nil {
			t.Fatalf("FromJSON(%s): %v", c.text, err)
		}
		if p.Kind() != c.kind {
			t.Fatalf("FromJSON(%s) tagged %s, want %s", c.text, p.Kind(), c.kind)
		}
	}
}

func TestFromJSONRejectsInvalidText(t *testing.T) {
	_, err := FromJSON("scid", `{"unterminated`)
	if !diderr.IsKind(err, diderr.KindInvalidDidMethodParameter) {
		t.Fatalf("want InvalidDidMethodParameter, got %v", err)
	}
}

func TestAccessorsAgreeWithTag(t *testing.T) {
	p := NewString("scid", "zQmSCID")
	got, err := p.StringValue()
	if err != nil || got != "zQmSCID" {
		t.Fatalf("string value: %v %q", err, got)
	}
	if _, err := p.BoolValue(); !diderr.IsKind(err, diderr.KindInvalidDidMethodParameter) {
		t.Fatalf("want tag mismatch error, got %v", err)
	}
	if _, err := p.StringArrayValue(); !diderr.IsKind(err, diderr.KindInvalidDidMethodParameter) {
		t.Fatalf("want tag mismatch error, got %v", err)
	}
}

func TestStringArrayNeverMixesTypes(t *testing.T) {
	p, err := FromJSON("updateKeys", `["z6MkA", 7]`)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if p.Kind() != Array {
		t.Fatalf("mixed array tagged %s, want plain array", p.Kind())
	}
	if _, err := p.StringArrayValue(); err == nil {
		t.Fatalf("mixed array exposed as string array")
	}
}

func TestOptionConstructorsRejectOmittedRequired(t *testing.T) {
	if _, err := NewStringFromOption("scid", nil); !diderr.IsKind(err, diderr.KindInvalidDidMethodParameter) {
		t.Fatalf("want InvalidDidMethodParameter, got %v", err)
	}
	if _, err := NewStringArrayFromOption("updateKeys", nil); !diderr.IsKind(err, diderr.KindInvalidDidMethodParameter) {
		t.Fatalf("want InvalidDidMethodParameter, got %v", err)
	}
	if _, err := NewNumberFromOption("ttl", nil); !diderr.IsKind(err, diderr.KindInvalidDidMethodParameter) {
		t.Fatalf("want InvalidDidMethodParameter, got %v", err)
	}
	one := uint64(1)
	p, err := NewNumberFromOption("ttl", &one)
	if err != nil {
		t.Fatalf("NewNumberFromOption: %v", err)
	}
	n, err := p.NumberValue()
	if err != nil || n.String() != "1" {
		t.Fatalf("number value %v %v", n, err)
	}
}

func TestBoolFromOptionDefaultsToFalse(t *testing.T) {
	p := NewBoolFromOption("portable", nil)
	v, err := p.BoolValue()
	if err != nil || v {
		t.Fatalf("omitted bool parameter must default to false, got %v %v", v, err)
	}
}

func TestJSONTextRoundTrip(t *testing.T) {
	cases := []string{`null`, `true`, `"zQmSCID"`, `42`, `["a","b"]`, `{"k":1}`}
	for _, text := range cases {
		p, err := FromJSON("x", text)
		if err != nil {
			t.Fatalf("FromJSON(%s): %v", text, err)
		}
		var want, got any
		if err := json.Unmarshal([]byte(text), &want); err != nil {
			t.Fatalf("unmarshal %s: %v", text, err)
		}
		if err := json.Unmarshal([]byte(p.JSONText()), &got); err != nil {
			t.Fatalf("unmarshal round trip %s: %v", p.JSONText(), err)
		}
		wantText, _ := json.Marshal(want)
		gotText, _ := json.Marshal(got)
		if string(wantText) != string(gotText) {
			t.Fatalf("round trip of %s produced %s", text, p.JSONText())
		}
	}
}
