package adapter

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/ralph-loop/ralph/internal/models"
)

// resolveBinary finds a CLI binary.
// Check order: settings.yaml → exec.LookPath → platform-specific fallbacks.
// Returns empty when the binary cannot be found.
func resolveBinary(name string, settings *models.Settings) string {
	// 1. Check settings for a configured path
	if settings != nil {
		if cfg, ok := settings.Agents[name]; ok && cfg != nil && cfg.Path != "" {
			if _, err := os.Stat(cfg.Path); err == nil {
				return cfg.Path
			}
		}
	}

	// 2. Try exec.LookPath
	if path, err := exec.LookPath(name); err == nil {
		return path
	}

	// 3. Platform-specific fallbacks
	homeDir, _ := os.UserHomeDir()
	var fallbacks []string
	if name == "claude" {
		fallbacks = append(fallbacks, filepath.Join(homeDir, ".claude", "local", "claude"))
	}
	if runtime.GOOS == "darwin" {
		fallbacks = append(fallbacks,
			filepath.Join("/opt/homebrew/bin", name),
			filepath.Join("/usr/local/bin", name),
		)
	}

	for _, p := range fallbacks {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
