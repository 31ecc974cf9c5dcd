package model

import "testing"

func TestRunStateClassification(t *testing.T) {
	active := []RunState{RunStatePending, RunStateRunning}
	terminal := []RunState{RunStateSuccess, RunStateError, RunStateCanceled}

	for _, s := range active {
		if !s.IsActive() {
			t.Errorf("%s: expected active", s)
		}
		if s.IsTerminal() {
			t.Errorf("%s: expected not terminal", s)
		}
	}
	for _, s := range terminal {
		if s.IsActive() {
			t.Errorf("%s: expected not active", s)
		}
		if !s.IsTerminal() {
			t.Errorf("%s: expected terminal", s)
		}
	}
}

func TestCanTransitionTo(t *testing.T) {
	allowed := []struct{ from, to RunState }{
		{RunStatePending, RunStateRunning},
		{RunStatePending, RunStateError},
		{RunStatePending, RunStateCanceled},
		{RunStateRunning, RunStateSuccess},
		{RunStateRunning, RunStateError},
		{RunStateRunning, RunStateCanceled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s: expected allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to RunState }{
		{RunStatePending, RunStateSuccess},
		{RunStateSuccess, RunStateRunning},
		{RunStateError, RunStateSuccess},
		{RunStateCanceled, RunStateRunning},
		{RunStateRunning, RunStatePending},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s: expected denied", tc.from, tc.to)
		}
	}
}

func TestRunTransitionTimestamps(t *testing.T) {
	run := &Run{ID: "r1", State: RunStatePending}

	if err := run.Transition(RunStateRunning); err != nil {
		t.Fatalf("PENDING -> RUNNING: %v", err)
	}
	if run.StartedAt == nil {
		t.Error("expected StartedAt to be set")
	}
	if run.FinishedAt != nil {
		t.Error("expected FinishedAt unset while running")
	}

	if err := run.Transition(RunStateSuccess); err != nil {
		t.Fatalf("RUNNING -> SUCCESS: %v", err)
	}
	if run.FinishedAt == nil {
		t.Error("expected FinishedAt to be set")
	}
	if run.Duration() < 0 {
		t.Errorf("negative duration: %v", run.Duration())
	}

	err := run.Transition(RunStateRunning)
	if err == nil {
		t.Fatal("expected error for transition out of terminal state")
	}
	if _, ok := err.(*InvalidTransitionError); !ok {
		t.Errorf("expected InvalidTransitionError, got %T", err)
	}
	if run.State != RunStateSuccess {
		t.Errorf("state changed on invalid transition: %s", run.State)
	}
}
