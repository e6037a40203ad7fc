package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ralph-loop/ralph/internal/config"
)

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the current project from the registry",
	Long: `Removes the current project from the global registry. Its .ralph/
directory and run logs are left on disk; delete them by hand if you
want them gone. A project with an active loop cannot be removed.`,
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	projectPath, err := getProjectPath()
	if err != nil {
		return err
	}

	project, err := loadProject(projectPath)
	if err != nil {
		return err
	}

	record, err := config.LoadRecord(projectPath)
	if err != nil {
		return err
	}
	if record != nil && record.Status.Active() {
		return fmt.Errorf("project is %s; stop the loop before removing it", record.Status)
	}

	if err := config.UnregisterProject(project.ProjectID); err != nil {
		return err
	}

	fmt.Printf("%s %s\n", styleSuccess.Render("Removed"), styleValue.Render(project.Name))
	return nil
}
