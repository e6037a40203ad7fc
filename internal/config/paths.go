// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global Ralph directory.
	GlobalDirName = ".ralph"

	// ProjectDirName is the name of the per-project Ralph directory.
	ProjectDirName = ".ralph"

	// LogsDirName is the name of the run-logs directory.
	LogsDirName = "logs"
)

// File names
const (
	ProjectsFileName = "projects.yaml"
	SettingsFileName = "settings.yaml"
	ProjectFileName  = "project.yaml"
	TaskFileName     = "task.yaml"
	RecordFileName   = "record.yaml"
)

// GlobalDir returns the path to the global Ralph directory (~/.ralph/).
// The RALPH_HOME environment variable overrides the default location.
func GlobalDir() (string, error) {
	if dir := os.Getenv("RALPH_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalProjectsFile returns the path to the projects.yaml file.
func GlobalProjectsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProjectsFileName), nil
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// GlobalLogsDir returns the path to the run-logs directory.
func GlobalLogsDir() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogsDirName), nil
}

// ProjectDir returns the path to a project's .ralph/ directory.
func ProjectDir(projectPath string) string {
	return filepath.Join(projectPath, ProjectDirName)
}

// ProjectFile returns the path to a project's project.yaml file.
func ProjectFile(projectPath string) string {
	return filepath.Join(ProjectDir(projectPath), ProjectFileName)
}

// TaskFile returns the path to a project's task.yaml file.
func TaskFile(projectPath string) string {
	return filepath.Join(ProjectDir(projectPath), TaskFileName)
}

// RecordFile returns the path to a project's record.yaml file.
func RecordFile(projectPath string) string {
	return filepath.Join(ProjectDir(projectPath), RecordFileName)
}

// EnsureGlobalDir creates the global Ralph directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureGlobalLogsDir creates the run-logs directory if it doesn't exist.
func EnsureGlobalLogsDir() error {
	dir, err := GlobalLogsDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureProjectDir creates the project's .ralph/ directory.
func EnsureProjectDir(projectPath string) error {
	return os.MkdirAll(ProjectDir(projectPath), 0755)
}

// ProjectExists checks if a project's .ralph/ directory exists.
func ProjectExists(projectPath string) bool {
	_, err := os.Stat(ProjectDir(projectPath))
	return err == nil
}
