package trigger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FieldType is the resolved marker for a declared payload field type.
type FieldType string

// Allowed payload field types, keyed by their registration tags.
const (
	FieldString   FieldType = "str"
	FieldInteger  FieldType = "int"
	FieldFloat    FieldType = "float"
	FieldCallable FieldType = "function"
)

var allowedFieldTypes = map[string]FieldType{
	"str":      FieldString,
	"int":      FieldInteger,
	"float":    FieldFloat,
	"function": FieldCallable,
}

// Structure maps payload field names to their declared types.
type Structure map[string]FieldType

// Kind names the JSON kind of a raw value in validation messages.
type Kind string

// JSON value kinds.
const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindNull    Kind = "null"
)

func kindOf(raw json.RawMessage) Kind {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return KindNull
	}
	switch b[0] {
	case '"':
		return KindString
	case '{':
		return KindObject
	case '[':
		return KindArray
	case 't', 'f':
		return KindBoolean
	case 'n':
		return KindNull
	default:
		return KindNumber
	}
}

// Registration carries the raw fields of a register request. Each field is
// kept undecoded so validation can report the kind a caller actually sent.
type Registration struct {
	Name      json.RawMessage `json:"name"`
	Service   json.RawMessage `json:"service"`
	URL       json.RawMessage `json:"url"`
	Structure json.RawMessage `json:"structure"`
	State     json.RawMessage `json:"state,omitempty"`
	Providers json.RawMessage `json:"providers,omitempty"`
}

// ParseRegistration decodes a JSON register body. Anything but a JSON object
// is rejected.
func ParseRegistration(data []byte) (*Registration, error) {
	if kindOf(data) != KindObject {
		return nil, &ValidationError{Message: "Invalid trigger data. dict data expected"}
	}
	var reg Registration
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, &ValidationError{Message: "Invalid trigger data. dict data expected"}
	}
	return &reg, nil
}

// ValidateRegistration checks url, service and structure kinds in that order
// and stops at the first violation.
func ValidateRegistration(reg *Registration) error {
	checks := []struct {
		field string
		raw   json.RawMessage
		want  Kind
	}{
		{"url", reg.URL, KindString},
		{"service", reg.Service, KindString},
		{"structure", reg.Structure, KindObject},
	}
	for _, c := range checks {
		if got := kindOf(c.raw); got != c.want {
			return kindError(c.field, c.want, got)
		}
	}
	return nil
}

// ValidateStructure resolves every declared type tag to its FieldType.
// Unknown tags fail the whole structure.
func ValidateStructure(raw json.RawMessage) (Structure, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, kindError("structure", KindObject, kindOf(raw))
	}

	// Report the first offending field deterministically.
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(Structure, len(fields))
	for _, name := range names {
		tagRaw := fields[name]
		var tag string
		if err := json.Unmarshal(tagRaw, &tag); err != nil {
			return nil, &ValidationError{
				Field:   name,
				Message: fmt.Sprintf("Type %s not allowed in payload", strings.TrimSpace(string(tagRaw))),
			}
		}
		ft, ok := allowedFieldTypes[tag]
		if !ok {
			return nil, &ValidationError{
				Field:   name,
				Message: fmt.Sprintf("Type %s not allowed in payload", tag),
			}
		}
		out[name] = ft
	}
	return out, nil
}

// NewDefinition validates reg and builds the definition it describes.
func NewDefinition(reg *Registration) (*Definition, error) {
	if err := ValidateRegistration(reg); err != nil {
		return nil, err
	}
	structure, err := ValidateStructure(reg.Structure)
	if err != nil {
		return nil, err
	}

	var name string
	if k := kindOf(reg.Name); k != KindString {
		return nil, kindError("name", KindString, k)
	}
	_ = json.Unmarshal(reg.Name, &name)
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Message: "Invalid trigger name. A non-empty name is required"}
	}

	def := &Definition{Name: name, Structure: structure}
	_ = json.Unmarshal(reg.Service, &def.Service)
	_ = json.Unmarshal(reg.URL, &def.URL)

	if k := kindOf(reg.State); k != KindNull {
		if k != KindObject {
			return nil, kindError("state", KindObject, k)
		}
		var spec StateSpec
		if err := json.Unmarshal(reg.State, &spec); err != nil {
			return nil, &ValidationError{Field: "state", Message: "State map must be a valid dict of transitions"}
		}
		if _, err := NewStateMachine(&spec); err != nil {
			return nil, err
		}
		def.State = &spec
	}

	if k := kindOf(reg.Providers); k != KindNull {
		if k != KindObject {
			return nil, kindError("providers", KindObject, k)
		}
		if err := json.Unmarshal(reg.Providers, &def.Providers); err != nil {
			return nil, &ValidationError{Field: "providers", Message: "Invalid providers. Expected a mapping of state name to provider name"}
		}
	}

	return def, nil
}

// CheckPayload applies the notify-time structure check. Like the check it
// replaces, a payload is rejected only when none of the declared fields
// match their declared type.
func CheckPayload(structure Structure, payload map[string]any) error {
	if len(structure) == 0 {
		return nil
	}
	names := make([]string, 0, len(structure))
	for name := range structure {
		names = append(names, name)
	}
	sort.Strings(names)

	invalid := 0
	var lastName string
	var lastType FieldType
	var lastValue any
	for _, name := range names {
		v := payload[name]
		if !matchesType(structure[name], v) {
			invalid++
		}
		lastName, lastType, lastValue = name, structure[name], v
	}
	if invalid == len(names) {
		return &PayloadError{Message: fmt.Sprintf(
			"Invalid type for %s. Expected %s, got %s", lastName, lastType, valueKind(lastValue),
		)}
	}
	return nil
}

func matchesType(ft FieldType, v any) bool {
	switch ft {
	case FieldString, FieldCallable:
		_, ok := v.(string)
		return ok
	case FieldInteger:
		switch n := v.(type) {
		case int, int64:
			return true
		case json.Number:
			_, err := n.Int64()
			return err == nil
		case float64:
			return n == float64(int64(n))
		}
	case FieldFloat:
		switch n := v.(type) {
		case float64:
			return true
		case json.Number:
			return strings.ContainsAny(n.String(), ".eE")
		}
	}
	return false
}

func valueKind(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case bool:
		return KindBoolean
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	default:
		return KindNumber
	}
}

func kindError(field string, want, got Kind) error {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("Invalid type for %s. Expected %s, got %s", field, want, got),
	}
}
