// Package param models DID method parameters: named, type-tagged values whose
// tag and extracted value always agree.
package param

import (
	"encoding/json"
	"fmt"
	"strings"

	"webvh.dev/didlog/diderr"
)

func newNumberDecoder(text string) *json.Decoder {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	return dec
}

// Kind tags the JSON shape a parameter carries. A parameter only ever exposes
// the accessor matching its tag; there is one case per JSON value shape plus
// the string-array case the DID method uses for key lists.
type Kind int

const (
	Null Kind = iota
	Bool
	String
	Number
	StringArray
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Number:
		return "number"
	case StringArray:
		return "string array"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Parameter is a named DID method parameter. The zero value is the null
// parameter with an empty name. Parameters are immutable once constructed.
type Parameter struct {
	name string
	kind Kind

	boolValue   bool
	stringValue string
	numberValue json.Number
	arrayValue  []string
	rawValue    json.RawMessage
}

// NewBool constructs a boolean parameter.
func NewBool(name string, value bool) Parameter {
	return Parameter{name: name, kind: Bool, boolValue: value}
}

// NewBoolFromOption constructs a boolean parameter, falling back to false when
// the optional value was omitted.
func NewBoolFromOption(name string, value *bool) Parameter {
	if value == nil {
		return NewBool(name, false)
	}
	return NewBool(name, *value)
}

// NewString constructs a string parameter.
func NewString(name, value string) Parameter {
	return Parameter{name: name, kind: String, stringValue: value}
}

// NewStringFromOption constructs a string parameter; an omitted required value
// is an InvalidDidMethodParameter error.
func NewStringFromOption(name string, value *string) (Parameter, error) {
	if value == nil {
		return Parameter{}, diderr.New(diderr.KindInvalidDidMethodParameter,
			fmt.Sprintf("DID method parameter omitted: %s", name))
	}
	return NewString(name, *value), nil
}

// NewStringArray constructs a string-array parameter.
func NewStringArray(name string, values []string) Parameter {
	return Parameter{name: name, kind: StringArray, arrayValue: append([]string(nil), values...)}
}

// NewStringArrayFromOption constructs a string-array parameter; an omitted
// required value is an InvalidDidMethodParameter error.
func NewStringArrayFromOption(name string, values []string) (Parameter, error) {
	if values == nil {
		return Parameter{}, diderr.New(diderr.KindInvalidDidMethodParameter,
			fmt.Sprintf("DID method parameter omitted: %s", name))
	}
	return NewStringArray(name, values), nil
}

// NewNumber constructs a number parameter.
func NewNumber(name string, value json.Number) Parameter {
	return Parameter{name: name, kind: Number, numberValue: value}
}

// NewNumberFromOption constructs a number parameter from an optional count; an
// omitted required value is an InvalidDidMethodParameter error.
func NewNumberFromOption(name string, value *uint64) (Parameter, error) {
	if value == nil {
		return Parameter{}, diderr.New(diderr.KindInvalidDidMethodParameter,
			fmt.Sprintf("DID method parameter omitted: %s", name))
	}
	return NewNumber(name, json.Number(fmt.Sprintf("%d", *value))), nil
}

// FromJSON constructs a parameter from a string of JSON text, tagging it with
// the shape of the parsed value. Text that is not valid JSON is an
// InvalidDidMethodParameter error.
func FromJSON(name, text string) (Parameter, error) {
	var v any
	dec := newNumberDecoder(text)
	if err := dec.Decode(&v); err != nil {
		return Parameter{}, diderr.Wrap(diderr.KindInvalidDidMethodParameter,
			fmt.Sprintf("'%s' denoting the DID method parameter '%s' is not a valid JSON text", text, name), err)
	}
	switch value := v.(type) {
	case nil:
		return Parameter{name: name, kind: Null}, nil
	case bool:
		return NewBool(name, value), nil
	case string:
		return NewString(name, value), nil
	case json.Number:
		return NewNumber(name, value), nil
	case []any:
		if strs, ok := stringSlice(value); ok {
			return NewStringArray(name, strs), nil
		}
		return Parameter{name: name, kind: Array, rawValue: json.RawMessage(text)}, nil
	case map[string]any:
		return Parameter{name: name, kind: Object, rawValue: json.RawMessage(text)}, nil
	default:
		return Parameter{}, diderr.New(diderr.KindInvalidDidMethodParameter,
			fmt.Sprintf("unsupported JSON shape for DID method parameter '%s'", name))
	}
}

func stringSlice(values []any) ([]string, bool) {
	strs := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		strs = append(strs, s)
	}
	return strs, true
}

// Name returns the parameter name.
func (p Parameter) Name() string { return p.name }

// Kind returns the shape tag.
func (p Parameter) Kind() Kind { return p.kind }

func (p Parameter) IsNull() bool        { return p.kind == Null }
func (p Parameter) IsBool() bool        { return p.kind == Bool }
func (p Parameter) IsString() bool      { return p.kind == String }
func (p Parameter) IsNumber() bool      { return p.kind == Number }
func (p Parameter) IsStringArray() bool { return p.kind == StringArray }
func (p Parameter) IsArray() bool       { return p.kind == Array || p.kind == StringArray }
func (p Parameter) IsObject() bool      { return p.kind == Object }

// BoolValue returns the boolean value; a tag mismatch is an
// InvalidDidMethodParameter error.
func (p Parameter) BoolValue() (bool, error) {
	if p.kind != Bool {
		return false, p.kindMismatch(Bool)
	}
	return p.boolValue, nil
}

// StringValue returns the string value; a tag mismatch is an
// InvalidDidMethodParameter error.
func (p Parameter) StringValue() (string, error) {
	if p.kind != String {
		return "", p.kindMismatch(String)
	}
	return p.stringValue, nil
}

// NumberValue returns the number value; a tag mismatch is an
// InvalidDidMethodParameter error.
func (p Parameter) NumberValue() (json.Number, error) {
	if p.kind != Number {
		return "", p.kindMismatch(Number)
	}
	return p.numberValue, nil
}

// StringArrayValue returns the string-array value; a tag mismatch is an
// InvalidDidMethodParameter error. The returned slice never mixes types.
func (p Parameter) StringArrayValue() ([]string, error) {
	if p.kind != StringArray {
		return nil, p.kindMismatch(StringArray)
	}
	return append([]string(nil), p.arrayValue...), nil
}

func (p Parameter) kindMismatch(want Kind) error {
	return diderr.New(diderr.KindInvalidDidMethodParameter,
		fmt.Sprintf("DID method parameter '%s' is tagged %s, not %s", p.name, p.kind, want))
}

// JSONText returns the parameter value re-serialized as JSON text.
func (p Parameter) JSONText() string {
	switch p.kind {
	case Null:
		return "null"
	case Bool:
		if p.boolValue {
			return "true"
		}
		return "false"
	case String:
		b, _ := json.Marshal(p.stringValue)
		return string(b)
	case Number:
		return p.numberValue.String()
	case StringArray:
		b, _ := json.Marshal(p.arrayValue)
		return string(b)
	case Array, Object:
		return string(p.rawValue)
	default:
		return "null"
	}
}

// JSONValue returns the parameter value as a JSON-compatible Go value, for
// inclusion in hash computation.
func (p Parameter) JSONValue() any {
	switch p.kind {
	case Null:
		return nil
	case Bool:
		return p.boolValue
	case String:
		return p.stringValue
	case Number:
		return p.numberValue
	case StringArray:
		return append([]string(nil), p.arrayValue...)
	case Array, Object:
		return json.RawMessage(p.rawValue)
	default:
		return nil
	}
}
