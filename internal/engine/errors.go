// Package engine runs the iteration loops: subprocess supervision, the
// per-project state machine, scheduling, and event fan-out.
package engine

import (
	"errors"
	"fmt"

	"github.com/ralph-loop/ralph/internal/models"
)

var (
	// ErrNotFound means the project is not registered with the manager.
	ErrNotFound = errors.New("project not found")

	// ErrAlreadyRunning means the project already has an active run.
	ErrAlreadyRunning = errors.New("loop already active")

	// ErrNoTask means the project has no task.yaml configured.
	ErrNoTask = errors.New("no task configured")
)

// InvalidTransitionError reports a rejected state machine edge.
type InvalidTransitionError struct {
	From models.Status
	To   models.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// SpawnError means the agent subprocess could not be started at all,
// as opposed to starting and then exiting non-zero.
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
