package config

import (
	"github.com/ralph-loop/ralph/internal/models"
)

// LoadRecord loads a project's execution record from its .ralph/record.yaml
// file. Returns nil without error when no record exists yet.
func LoadRecord(projectPath string) (*models.ExecutionRecord, error) {
	path := RecordFile(projectPath)

	if !FileExists(path) {
		return nil, nil
	}

	var record models.ExecutionRecord
	if err := LoadYAML(path, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// SaveRecord saves a project's execution record to its .ralph/record.yaml
// file. Records are rewritten on every status transition so a restart can
// reconcile from them.
func SaveRecord(projectPath string, record *models.ExecutionRecord) error {
	if err := EnsureProjectDir(projectPath); err != nil {
		return err
	}
	record.Touch()
	return SaveYAML(RecordFile(projectPath), record)
}
