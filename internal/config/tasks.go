package config

import (
	"github.com/ralph-loop/ralph/internal/models"
)

// LoadTask loads a project's task from its .ralph/task.yaml file.
// Returns nil without error when no task has been configured.
func LoadTask(projectPath string) (*models.Task, error) {
	path := TaskFile(projectPath)

	if !FileExists(path) {
		return nil, nil
	}

	var task models.Task
	if err := LoadYAML(path, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// SaveTask saves a project's task to its .ralph/task.yaml file.
func SaveTask(projectPath string, task *models.Task) error {
	if err := EnsureProjectDir(projectPath); err != nil {
		return err
	}
	return SaveYAML(TaskFile(projectPath), task)
}
