package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ralph-loop/ralph/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current project's loop status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("%s %s\n", styleBrand.Render(project.Name), styleHint.Render(project.ProjectID))
	if record == nil {
		fmt.Printf("%s %s\n", styleLabel.Render("status:"), renderStatus("ready"))
		return nil
	}

	fmt.Printf("%s %s\n", styleLabel.Render("status:"), renderStatus(record.Status))
	fmt.Printf("%s %d/%d\n", styleLabel.Render("iteration:"), record.Iteration, record.MaxIterations)
	if record.StartedAt != nil {
		fmt.Printf("%s %s\n", styleLabel.Render("started:"), record.StartedAt.Local().Format(time.RFC822))
	}
	if record.ElapsedMs > 0 {
		fmt.Printf("%s %s\n", styleLabel.Render("elapsed:"),
			(time.Duration(record.ElapsedMs) * time.Millisecond).Round(time.Second))
	}
	if record.Summary != "" {
		fmt.Printf("%s %s\n", styleLabel.Render("summary:"), record.Summary)
	}
	if record.LastError != "" {
		fmt.Printf("%s %s\n", styleLabel.Render("error:"), styleError.Render(record.LastError))
	}
	return nil
}
