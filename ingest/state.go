package ingest

import "fmt"

// State is the explicit lifecycle state of an ingestion job. Each
// pipeline stage is entered through a validated transition, so an
// out-of-order stage is a programming error caught immediately rather
// than a silent misreport.
type State string

// Ingestion job states. Error is an absorbing state reachable from any
// non-terminal state.
const (
	StateReceived     State = "received"
	StateExtracting   State = "extracting"
	StateCopying      State = "copying"
	StateRecording    State = "recording"
	StateThumbnailing State = "thumbnailing"
	StateReady        State = "ready"
	StateError        State = "error"
)

// transitions maps each state to its legal successors.
var transitions = map[State][]State{
	StateReceived:     {StateExtracting, StateError},
	StateExtracting:   {StateCopying, StateError},
	StateCopying:      {StateRecording, StateError},
	StateRecording:    {StateThumbnailing, StateError},
	StateThumbnailing: {StateReady, StateError},
	StateReady:        {},
	StateError:        {},
}

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateReady || s == StateError
}

// CanTransition reports whether s -> to is a legal transition.
func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates and returns the next state.
func (s State) Transition(to State) (State, error) {
	if !s.CanTransition(to) {
		return s, fmt.Errorf("illegal state transition %s -> %s", s, to)
	}
	return to, nil
}

// Milestone returns the coarse progress percent reported on entering a
// state. Coarse by design: the status UI polls, it does not stream.
func Milestone(s State) int {
	switch s {
	case StateReceived, StateExtracting:
		return 0
	case StateCopying:
		return 20
	case StateRecording:
		return 50
	case StateThumbnailing:
		return 75
	case StateReady:
		return 100
	default:
		return 0
	}
}
