package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     Status
		to       Status
		expected bool
	}{
		{name: "ready to queued", from: StatusReady, to: StatusQueued, expected: true},
		{name: "ready to brainstorming", from: StatusReady, to: StatusBrainstorming, expected: true},
		{name: "ready to running skips queued", from: StatusReady, to: StatusRunning, expected: false},
		{name: "queued to running", from: StatusQueued, to: StatusRunning, expected: true},
		{name: "queued cancelled before start", from: StatusQueued, to: StatusCancelled, expected: true},
		{name: "queued cannot pause", from: StatusQueued, to: StatusPausing, expected: false},
		{name: "running to pausing", from: StatusRunning, to: StatusPausing, expected: true},
		{name: "running to done", from: StatusRunning, to: StatusDone, expected: true},
		{name: "running cannot park directly", from: StatusRunning, to: StatusPaused, expected: false},
		{name: "pausing to paused", from: StatusPausing, to: StatusPaused, expected: true},
		{name: "pausing can still finish", from: StatusPausing, to: StatusDone, expected: true},
		{name: "paused resumes through queued", from: StatusPaused, to: StatusQueued, expected: true},
		{name: "paused cannot run directly", from: StatusPaused, to: StatusRunning, expected: false},
		{name: "paused can be stopped", from: StatusPaused, to: StatusCancelled, expected: true},
		{name: "done restarts through queued", from: StatusDone, to: StatusQueued, expected: true},
		{name: "failed restarts through queued", from: StatusFailed, to: StatusQueued, expected: true},
		{name: "done cannot go running", from: StatusDone, to: StatusRunning, expected: false},
		{name: "unknown status has no edges", from: Status("bogus"), to: StatusQueued, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status    Status
		startable bool
		active    bool
		terminal  bool
		holdsSlot bool
	}{
		{StatusReady, true, false, false, false},
		{StatusBrainstorming, true, false, false, false},
		{StatusQueued, false, true, false, false},
		{StatusRunning, false, true, false, true},
		{StatusPausing, false, true, false, true},
		{StatusPaused, false, true, false, false},
		{StatusDone, true, false, true, false},
		{StatusFailed, true, false, true, false},
		{StatusCancelled, true, false, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Startable(); got != tt.startable {
				t.Errorf("Startable() = %v, want %v", got, tt.startable)
			}
			if got := tt.status.Active(); got != tt.active {
				t.Errorf("Active() = %v, want %v", got, tt.active)
			}
			if got := tt.status.Terminal(); got != tt.terminal {
				t.Errorf("Terminal() = %v, want %v", got, tt.terminal)
			}
			if got := tt.status.HoldsSlot(); got != tt.holdsSlot {
				t.Errorf("HoldsSlot() = %v, want %v", got, tt.holdsSlot)
			}
		})
	}
}

func TestEveryTransitionTargetHasEdges(t *testing.T) {
	// Every status reachable through the state machine must itself be a
	// defined state, or a project could get stuck in limbo.
	for from, targets := range transitions {
		for _, to := range targets {
			if _, ok := transitions[to]; !ok {
				t.Errorf("transition %s -> %s reaches a status with no outgoing edges", from, to)
			}
		}
	}
}
