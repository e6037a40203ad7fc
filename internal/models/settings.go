package models

// AgentConfig holds configuration for a specific coding-agent CLI.
type AgentConfig struct {
	Path string `yaml:"path"` // empty = lookup in PATH, or absolute path
}

// DefaultsConfig holds default settings for new tasks.
type DefaultsConfig struct {
	CLI              string `yaml:"cli"`
	MaxIterations    int    `yaml:"max_iterations"`
	CompletionSignal string `yaml:"completion_signal"`
	AutoCommit       bool   `yaml:"auto_commit"`
}

// Settings represents global application settings.
// This corresponds to ~/.ralph/settings.yaml.
type Settings struct {
	Version        int                     `yaml:"version"`
	Agents         map[string]*AgentConfig `yaml:"agents"`
	Defaults       DefaultsConfig          `yaml:"defaults"`
	ConcurrencyCap int                     `yaml:"concurrency_cap"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Agents: map[string]*AgentConfig{
			"claude":   {Path: ""},
			"codex":    {Path: ""},
			"opencode": {Path: ""},
		},
		Defaults: DefaultsConfig{
			CLI:              "claude",
			MaxIterations:    10,
			CompletionSignal: DefaultCompletionSignal,
			AutoCommit:       false,
		},
		ConcurrencyCap: 3,
	}
}

// Cap returns the configured concurrency cap, falling back to the default
// when unset or invalid.
func (s *Settings) Cap() int {
	if s.ConcurrencyCap < 1 {
		return 3
	}
	return s.ConcurrencyCap
}
