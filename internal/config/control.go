package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ralph-loop/ralph/internal/models"
)

// ControlFileName is the per-project loop control request file.
const ControlFileName = "control.yaml"

// ControlFile returns the path to a project's control.yaml file.
func ControlFile(projectPath string) string {
	return filepath.Join(ProjectDir(projectPath), ControlFileName)
}

// WriteControl drops a control request for the engine session watching
// this project.
func WriteControl(projectPath string, action models.ControlAction) error {
	if err := EnsureProjectDir(projectPath); err != nil {
		return err
	}
	return SaveYAML(ControlFile(projectPath), &models.ControlRequest{
		Action:      action,
		RequestedAt: time.Now().UTC(),
	})
}

// LoadControl reads a pending control request. Returns nil when none is
// pending.
func LoadControl(projectPath string) (*models.ControlRequest, error) {
	path := ControlFile(projectPath)
	if !FileExists(path) {
		return nil, nil
	}
	var req models.ControlRequest
	if err := LoadYAML(path, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ClearControl removes a consumed control request.
func ClearControl(projectPath string) {
	_ = os.Remove(ControlFile(projectPath))
}
