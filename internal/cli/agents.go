package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ralph-loop/ralph/internal/adapter"
	"github.com/ralph-loop/ralph/internal/config"
	"github.com/ralph-loop/ralph/internal/models"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Show the supported agent CLIs and their install state",
	RunE:  runAgents,
}

func runAgents(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	for _, cli := range []models.CLIType{models.CLIClaude, models.CLICodex, models.CLIOpencode} {
		agent, err := adapter.ForType(cli, settings)
		if err != nil {
			return err
		}

		if !agent.Installed() {
			fmt.Printf("%s %s\n", styleError.Render("✗"), styleValue.Render(agent.Name()))
			continue
		}

		version, err := agent.Version(ctx)
		if err != nil {
			version = styleHint.Render("(version unknown)")
		}
		fmt.Printf("%s %s  %s\n  %s\n",
			styleSuccess.Render("✓"), styleValue.Render(agent.Name()),
			version, styleHint.Render(agent.Path()))
	}
	return nil
}
