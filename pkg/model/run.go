package model

import "time"

// FileResource is a file created by a successful workflow run. The
// identifier is the relative path declared in the template outputs.
type FileResource struct {
	Identifier string `json:"identifier"`
	Path       string `json:"path"`
}

// Run is a single execution of a template for a set of argument values.
// Runs are identified by unique ids assigned by the engine when the
// execution starts.
type Run struct {
	ID         string   `json:"id"`
	TemplateID string   `json:"template_id"`
	State      RunState `json:"state"`
	// Arguments holds the raw argument values the run was started with.
	Arguments map[string]any `json:"arguments,omitempty"`
	// Messages holds error output for failed runs.
	Messages []string `json:"messages,omitempty"`
	// Resources maps declared output files to their location on disk.
	// Only populated for successful runs.
	Resources map[string]FileResource `json:"resources,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Transition moves the run to the next state, recording timestamps.
// Returns an InvalidTransitionError if the transition is not allowed.
func (r *Run) Transition(next RunState) error {
	if !r.State.CanTransitionTo(next) {
		return &InvalidTransitionError{
			Entity: "run",
			ID:     r.ID,
			From:   r.State.String(),
			To:     next.String(),
		}
	}
	now := time.Now()
	switch next {
	case RunStateRunning:
		r.StartedAt = &now
	case RunStateSuccess, RunStateError, RunStateCanceled:
		r.FinishedAt = &now
	}
	r.State = next
	return nil
}

// Duration returns the elapsed wall time of the run, or zero if it has
// not started.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if r.FinishedAt != nil {
		end = *r.FinishedAt
	}
	return end.Sub(*r.StartedAt)
}
