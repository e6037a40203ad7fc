package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ralph-loop/ralph/internal/config"
	"github.com/ralph-loop/ralph/internal/models"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"ls"},
	Short:   "List registered projects",
	RunE:    runProjects,
}

func runProjects(cmd *cobra.Command, args []string) error {
	index, err := config.LoadProjectsIndex()
	if err != nil {
		return err
	}

	if len(index.Projects) == 0 {
		fmt.Println("No projects. Run 'ralph init' inside a project directory.")
		return nil
	}

	for _, entry := range index.Projects {
		status := models.StatusReady
		iteration := 0
		if record, err := config.LoadRecord(entry.Path); err == nil && record != nil {
			status = record.Status
			iteration = record.Iteration
		}

		line := fmt.Sprintf("%s  %s", renderStatus(status), styleValue.Render(entry.Name))
		if status.Active() || iteration > 0 {
			line += styleLabel.Render(fmt.Sprintf("  iteration %d", iteration))
		}
		line += styleHint.Render("  " + entry.Path)
		fmt.Println(line)
	}
	return nil
}
