package trigger

import "sync"

// StateMachine walks the ordered states of a StateSpec in one direction.
// Advance is safe for concurrent use; callers racing on the same trigger
// each observe a distinct step.
type StateMachine struct {
	mu      sync.Mutex
	states  []Transition
	current int
}

// NewStateMachine builds a machine positioned at the first state. An absent
// or empty sequence is a configuration error.
func NewStateMachine(spec *StateSpec) (*StateMachine, error) {
	if spec == nil || len(spec.Transitions) == 0 {
		return nil, &ValidationError{Field: "state", Message: "State map must be a valid dict of transitions"}
	}
	return &StateMachine{
		states: append([]Transition(nil), spec.Transitions...),
	}, nil
}

// Advance moves to the next state and returns it. At the last state it
// reports exhausted and leaves the current state where it is; further calls
// keep reporting exhausted.
func (m *StateMachine) Advance() (next Transition, exhausted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current+1 >= len(m.states) {
		return m.states[m.current], true
	}
	m.current++
	return m.states[m.current], false
}

// Current returns the state the machine is positioned at.
func (m *StateMachine) Current() Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[m.current]
}

// CurrentStateName returns the name of the current state.
func (m *StateMachine) CurrentStateName() string {
	return m.Current().Name
}

// Len reports the number of states in the sequence.
func (m *StateMachine) Len() int { return len(m.states) }
