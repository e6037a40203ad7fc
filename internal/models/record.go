package models

import "time"

// ExecutionRecord tracks the state of a project's current or most recent
// run. This corresponds to the record.yaml file in the .ralph/ directory;
// it is rewritten on every status transition and iteration advance.
type ExecutionRecord struct {
	Version       int        `yaml:"version"`
	ProjectID     string     `yaml:"project_id"`
	Status        Status     `yaml:"status"`
	Iteration     int        `yaml:"iteration"`
	MaxIterations int        `yaml:"max_iterations"`
	StartedAt     *time.Time `yaml:"started_at,omitempty"`
	PausedAt      *time.Time `yaml:"paused_at,omitempty"`
	CompletedAt   *time.Time `yaml:"completed_at,omitempty"`
	ElapsedMs     int64      `yaml:"elapsed_ms"`
	LastError     string     `yaml:"last_error,omitempty"`
	Summary       string     `yaml:"summary,omitempty"`
	UpdatedAt     time.Time  `yaml:"updated_at"`
}

// NewExecutionRecord creates a record in the ready state.
func NewExecutionRecord(projectID string) *ExecutionRecord {
	return &ExecutionRecord{
		Version:   1,
		ProjectID: projectID,
		Status:    StatusReady,
		UpdatedAt: time.Now().UTC(),
	}
}

// Touch bumps the record's update timestamp.
func (r *ExecutionRecord) Touch() {
	r.UpdatedAt = time.Now().UTC()
}
