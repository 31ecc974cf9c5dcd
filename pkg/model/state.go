package model

// RunState represents the lifecycle state of a workflow run.
type RunState string

const (
	RunStatePending  RunState = "PENDING"
	RunStateRunning  RunState = "RUNNING"
	RunStateSuccess  RunState = "SUCCESS"
	RunStateError    RunState = "ERROR"
	RunStateCanceled RunState = "CANCELED"
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	return string(s)
}

// IsActive returns true while the run has not reached a final state.
func (s RunState) IsActive() bool {
	return s == RunStatePending || s == RunStateRunning
}

// IsTerminal returns true if the run is in a final state.
func (s RunState) IsTerminal() bool {
	switch s {
	case RunStateSuccess, RunStateError, RunStateCanceled:
		return true
	}
	return false
}

// ValidRunTransitions defines the allowed state transitions for runs.
var ValidRunTransitions = map[RunState][]RunState{
	RunStatePending: {RunStateRunning, RunStateError, RunStateCanceled},
	RunStateRunning: {RunStateSuccess, RunStateError, RunStateCanceled},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s RunState) CanTransitionTo(next RunState) bool {
	for _, allowed := range ValidRunTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
