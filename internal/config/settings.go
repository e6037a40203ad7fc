package config

import (
	"github.com/ralph-loop/ralph/internal/models"
)

// LoadSettings loads settings from ~/.ralph/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadYAMLOrDefault(path, models.NewSettings)
}

// SaveSettings saves settings to ~/.ralph/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}

	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}
