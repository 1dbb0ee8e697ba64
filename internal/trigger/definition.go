// Package trigger holds the trigger definition model: the registered
// notification intent, its payload schema, its ordered state sequence and
// the errors raised while registering or dispatching it.
package trigger

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Definition is a registered notification intent. Name is the primary key.
type Definition struct {
	Name      string            `json:"name"`
	Service   string            `json:"service"`
	URL       string            `json:"url"`
	Structure Structure         `json:"structure"`
	State     *StateSpec        `json:"state,omitempty"`
	Providers map[string]string `json:"providers,omitempty"`
}

// Clone returns a deep copy so callers can't mutate registry state.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	out := *d
	if d.Structure != nil {
		out.Structure = make(Structure, len(d.Structure))
		for k, v := range d.Structure {
			out.Structure[k] = v
		}
	}
	if d.Providers != nil {
		out.Providers = make(map[string]string, len(d.Providers))
		for k, v := range d.Providers {
			out.Providers[k] = v
		}
	}
	if d.State != nil {
		s := *d.State
		s.Transitions = append([]Transition(nil), d.State.Transitions...)
		out.State = &s
	}
	return &out
}

// Transition is one named state and the data attached to it.
type Transition struct {
	Name string
	Data json.RawMessage
}

// StateSpec describes the ordered state sequence of a trigger. Transitions
// keep the key order of the mapping they were decoded from.
type StateSpec struct {
	Name        string
	Transitions []Transition
}

// UnmarshalJSON decodes a state mapping. When the mapping carries a
// "transitions" object that object is the sequence; otherwise the mapping
// itself is.
func (s *StateSpec) UnmarshalJSON(data []byte) error {
	pairs, err := decodeOrderedObject(data)
	if err != nil {
		return err
	}

	var nested json.RawMessage
	var name string
	for _, p := range pairs {
		switch p.Name {
		case "transitions":
			nested = p.Data
		case "name":
			_ = json.Unmarshal(p.Data, &name)
		}
	}

	s.Name = name
	if len(nested) == 0 || bytes.Equal(bytes.TrimSpace(nested), []byte("null")) {
		s.Transitions = pairs
		return nil
	}
	if kindOf(nested) != KindObject {
		// Kept as-is so NewStateMachine reports the configuration error.
		s.Transitions = nil
		return nil
	}
	s.Transitions, err = decodeOrderedObject(nested)
	return err
}

// MarshalJSON encodes the spec in its canonical nested form, preserving
// transition order.
func (s StateSpec) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if s.Name != "" {
		name, _ := json.Marshal(s.Name)
		buf.WriteString(`"name":`)
		buf.Write(name)
		buf.WriteByte(',')
	}
	buf.WriteString(`"transitions":{`)
	for i, t := range s.Transitions {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(t.Name)
		buf.Write(key)
		buf.WriteByte(':')
		if len(t.Data) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(t.Data)
		}
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// decodeOrderedObject reads a JSON object into its key/value pairs in
// document order.
func decodeOrderedObject(data []byte) ([]Transition, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, &ValidationError{Field: "state", Message: "State map must be a valid dict of transitions"}
	}

	var pairs []Transition
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decoding state key: %w", err)
		}
		key, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding state %q: %w", key, err)
		}
		if i, ok := index[key]; ok {
			pairs[i].Data = raw
			continue
		}
		index[key] = len(pairs)
		pairs = append(pairs, Transition{Name: key, Data: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	return pairs, nil
}
