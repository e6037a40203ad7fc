// Package cli implements the ralph CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ralph",
	Short: "Run coding agents in autonomous loops",
	Long: `Ralph re-invokes a coding agent CLI over a project until the task's
completion signal appears, an iteration cap is reached, or you stop it.
It manages multiple projects with a global concurrency cap.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(versionCmd)
}
