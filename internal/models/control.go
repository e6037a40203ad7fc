package models

import "time"

// ControlAction is a loop control request delivered through the
// project's .ralph/ directory.
type ControlAction string

const (
	ControlStart  ControlAction = "start"
	ControlPause  ControlAction = "pause"
	ControlResume ControlAction = "resume"
	ControlStop   ControlAction = "stop"
)

// Valid reports whether the action is one of the known controls.
func (a ControlAction) Valid() bool {
	switch a {
	case ControlStart, ControlPause, ControlResume, ControlStop:
		return true
	}
	return false
}

// ControlRequest is written by the CLI and consumed by the engine
// session watching the project directory.
type ControlRequest struct {
	Action      ControlAction `yaml:"action"`
	RequestedAt time.Time     `yaml:"requested_at"`
}
