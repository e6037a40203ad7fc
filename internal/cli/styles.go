package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ralph-loop/ralph/internal/models"
)

// Adaptive colors for terminal output.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Semantic styles for CLI output.
var (
	styleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleHint    = lipgloss.NewStyle().Foreground(colorDim)
	styleStderr  = lipgloss.NewStyle().Foreground(colorRed)
)

// Status badge styles.
var badgeStyles = map[models.Status]lipgloss.Style{
	models.StatusReady:         lipgloss.NewStyle().Foreground(colorDim),
	models.StatusBrainstorming: lipgloss.NewStyle().Foreground(colorCyan),
	models.StatusQueued:        lipgloss.NewStyle().Foreground(colorYellow),
	models.StatusRunning:       lipgloss.NewStyle().Foreground(colorGreen),
	models.StatusPausing:       lipgloss.NewStyle().Foreground(colorYellow),
	models.StatusPaused:        lipgloss.NewStyle().Foreground(colorYellow),
	models.StatusDone:          lipgloss.NewStyle().Bold(true).Foreground(colorGreen),
	models.StatusFailed:        lipgloss.NewStyle().Bold(true).Foreground(colorRed),
	models.StatusCancelled:     lipgloss.NewStyle().Foreground(colorDim),
}

// renderStatus renders a status with its badge style.
func renderStatus(s models.Status) string {
	if style, ok := badgeStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}
