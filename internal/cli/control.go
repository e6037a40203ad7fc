package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ralph-loop/ralph/internal/config"
	"github.com/ralph-loop/ralph/internal/models"
)

// The control commands signal the engine session (a foreground
// 'ralph run' in another terminal) through the project's .ralph/
// directory. The session's file watcher picks the request up.

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Queue the current project's loop on the running engine session",
	RunE:  makeControlRun(models.ControlStart, "Start requested."),
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the loop after the current iteration",
	RunE:  makeControlRun(models.ControlPause, "Pause requested. The current iteration will finish first."),
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused loop",
	RunE:  makeControlRun(models.ControlResume, "Resume requested."),
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the loop",
	RunE:  makeControlRun(models.ControlStop, "Stop requested."),
}

func makeControlRun(action models.ControlAction, message string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		projectPath, err := getProjectPath()
		if err != nil {
			return err
		}

		record, err := config.LoadRecord(projectPath)
		if err != nil {
			return err
		}
		if record != nil {
			if hint := controlHint(action, record.Status); hint != "" {
				fmt.Println(styleWarning.Render(hint))
			}
		}

		if err := config.WriteControl(projectPath, action); err != nil {
			return err
		}

		fmt.Println(styleSuccess.Render(message))
		fmt.Println(styleHint.Render("Applied by the active 'ralph run' session; start one if none is running."))
		return nil
	}
}

// controlHint warns when the persisted status suggests the request will
// be rejected. The engine session still decides; records can be stale.
func controlHint(action models.ControlAction, status models.Status) string {
	switch action {
	case models.ControlPause:
		if status != models.StatusRunning {
			return fmt.Sprintf("Project is %s; pause only applies while running.", status)
		}
	case models.ControlResume:
		if status != models.StatusPaused {
			return fmt.Sprintf("Project is %s; resume only applies while paused.", status)
		}
	case models.ControlStart:
		if status.Active() {
			return fmt.Sprintf("Project is already %s.", status)
		}
	case models.ControlStop:
		if !status.Active() {
			return fmt.Sprintf("Project is %s; nothing to stop.", status)
		}
	}
	return ""
}
