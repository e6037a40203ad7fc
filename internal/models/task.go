package models

import "time"

// CLIType identifies which coding-agent CLI a task runs.
type CLIType string

const (
	CLIClaude   CLIType = "claude"
	CLICodex    CLIType = "codex"
	CLIOpencode CLIType = "opencode"
)

// Valid reports whether the CLI type is one of the supported agents.
func (c CLIType) Valid() bool {
	switch c {
	case CLIClaude, CLICodex, CLIOpencode:
		return true
	}
	return false
}

// DefaultCompletionSignal is the sentinel the agent emits when the task
// prompt has been fully satisfied.
const DefaultCompletionSignal = "<RALPH_DONE>"

// Task represents a project's loop task definition.
// This corresponds to the task.yaml file in the .ralph/ directory.
type Task struct {
	Version            int       `yaml:"version"`
	CLI                CLIType   `yaml:"cli"`
	Prompt             string    `yaml:"prompt"`
	MaxIterations      int       `yaml:"max_iterations"`
	IterationTimeoutMs int64     `yaml:"iteration_timeout_ms"` // 0 = disabled
	IdleTimeoutMs      int64     `yaml:"idle_timeout_ms"`      // 0 = disabled
	CompletionSignal   string    `yaml:"completion_signal"`
	AutoCommit         bool      `yaml:"auto_commit"`
	AutoInitGit        bool      `yaml:"auto_init_git,omitempty"`
	SkipGitRepoCheck   bool      `yaml:"skip_git_repo_check,omitempty"`
	CreatedAt          time.Time `yaml:"created_at"`
	UpdatedAt          time.Time `yaml:"updated_at"`
}

// NewTask creates a task with default values.
func NewTask(cli CLIType, prompt string) *Task {
	now := time.Now().UTC()
	return &Task{
		Version:          1,
		CLI:              cli,
		Prompt:           prompt,
		MaxIterations:    10,
		CompletionSignal: DefaultCompletionSignal,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Signal returns the configured completion signal, falling back to the
// default when unset.
func (t *Task) Signal() string {
	if t.CompletionSignal == "" {
		return DefaultCompletionSignal
	}
	return t.CompletionSignal
}
