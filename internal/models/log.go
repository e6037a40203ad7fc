package models

import "time"

// LogLine is a single timestamped line of agent output.
type LogLine struct {
	Iteration int       `yaml:"iteration" json:"iteration"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	Content   string    `yaml:"content" json:"content"`
	Stderr    bool      `yaml:"stderr" json:"stderr"`
}

// RunLogMeta represents metadata for a single run log file.
type RunLogMeta struct {
	LogID      string `yaml:"log_id"`
	ProjectID  string `yaml:"project_id"`
	CLI        string `yaml:"cli"`
	StartedAt  string `yaml:"started_at"`
	EndedAt    string `yaml:"ended_at"`
	Status     string `yaml:"status"`
	Iterations int    `yaml:"iterations"`
}
