// Package models contains shared data structures used across the application.
package models

// Status represents the lifecycle state of a project's loop.
type Status string

// Loop statuses.
const (
	StatusReady         Status = "ready"
	StatusBrainstorming Status = "brainstorming"
	StatusQueued        Status = "queued"
	StatusRunning       Status = "running"
	StatusPausing       Status = "pausing"
	StatusPaused        Status = "paused"
	StatusDone          Status = "done"
	StatusFailed        Status = "failed"
	StatusCancelled     Status = "cancelled"
)

// transitions is the authoritative edge set of the loop state machine.
// Any pair not listed here is rejected.
var transitions = map[Status][]Status{
	StatusReady:         {StatusQueued, StatusBrainstorming},
	StatusBrainstorming: {StatusReady, StatusQueued},
	StatusQueued:        {StatusRunning, StatusCancelled},
	StatusRunning:       {StatusPausing, StatusDone, StatusFailed, StatusCancelled},
	StatusPausing:       {StatusPaused, StatusDone, StatusFailed, StatusCancelled},
	StatusPaused:        {StatusQueued, StatusCancelled},
	StatusDone:          {StatusQueued, StatusBrainstorming},
	StatusFailed:        {StatusQueued, StatusBrainstorming},
	StatusCancelled:     {StatusQueued, StatusBrainstorming},
}

// CanTransition reports whether moving from one status to another is a
// valid edge of the state machine.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Startable reports whether a fresh start request is accepted in this
// status. Only resting states accept one.
func (s Status) Startable() bool {
	switch s {
	case StatusReady, StatusBrainstorming, StatusDone, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether the status describes a run that has not reached a
// resting state. At most one active execution record exists per project.
func (s Status) Active() bool {
	switch s {
	case StatusQueued, StatusRunning, StatusPausing, StatusPaused:
		return true
	}
	return false
}

// Terminal reports whether the status is a terminal run outcome.
func (s Status) Terminal() bool {
	switch s {
	case StatusDone, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// HoldsSlot reports whether the status counts against the global
// concurrency cap.
func (s Status) HoldsSlot() bool {
	return s == StatusRunning || s == StatusPausing
}
