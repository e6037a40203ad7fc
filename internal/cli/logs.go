package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ralph-loop/ralph/internal/config"
	"github.com/ralph-loop/ralph/internal/models"
)

var logsCmd = &cobra.Command{
	Use:   "logs [log-id]",
	Short: "List run logs, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogs,
}

func runLogs(cmd *cobra.Command, args []string) error {
	projectPath, err := getProjectPath()
	if err != nil {
		return err
	}

	project, err := loadProject(projectPath)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		meta, body, err := config.ReadRunLog(project.ProjectID, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s  %s  %d iteration(s)\n",
			styleLabel.Render(meta.LogID), styleValue.Render(meta.CLI),
			renderStatus(models.Status(meta.Status)), meta.Iterations)
		fmt.Print(body)
		return nil
	}

	logs, err := config.ListRunLogs(project.ProjectID)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		fmt.Println("No run logs yet.")
		return nil
	}

	for _, meta := range logs {
		fmt.Printf("%s  %s  %s  %d iteration(s)\n",
			styleValue.Render(meta.LogID), renderStatus(models.Status(meta.Status)),
			styleLabel.Render(meta.StartedAt), meta.Iterations)
	}
	fmt.Println(styleHint.Render("'ralph logs <log-id>' to show one."))
	return nil
}
