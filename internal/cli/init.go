package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ralph-loop/ralph/internal/config"
	"github.com/ralph-loop/ralph/internal/models"
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Register the current directory as a project",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	if existing, err := config.LoadProject(cwd); err == nil && existing != nil {
		fmt.Printf("%s %s\n", styleWarning.Render("Already a project:"), styleValue.Render(existing.Name))
		return config.EnsureProjectRegistered(cwd)
	}

	name := filepath.Base(cwd)
	if len(args) == 1 {
		name = args[0]
	}

	project := models.NewProject(uuid.NewString(), name, cwd)
	if err := config.SaveProject(cwd, project); err != nil {
		return err
	}
	if err := config.SaveRecord(cwd, models.NewExecutionRecord(project.ProjectID)); err != nil {
		return err
	}
	if err := config.RegisterProject(project.ProjectID, name, cwd); err != nil {
		return err
	}

	fmt.Printf("%s %s\n", styleSuccess.Render("Initialized project"), styleValue.Render(name))
	fmt.Println(styleHint.Render("Next: 'ralph task set' to configure the loop, then 'ralph run'."))
	return nil
}

// loadProject reads the project file under projectPath, distinguishing
// a missing file from a read failure.
func loadProject(projectPath string) (*models.Project, error) {
	project, err := config.LoadProject(projectPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("no project file in %s; run 'ralph init' first", projectPath)
	}
	return project, nil
}

// getProjectPath resolves the current working directory as a registered
// project, self-healing the global index.
func getProjectPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	if !config.ProjectExists(cwd) {
		return "", fmt.Errorf("not a ralph project. Run 'ralph init' first")
	}

	if err := config.EnsureProjectRegistered(cwd); err != nil {
		return "", fmt.Errorf("failed to register project: %w", err)
	}

	return cwd, nil
}
