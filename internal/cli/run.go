package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ralph-loop/ralph/internal/config"
	"github.com/ralph-loop/ralph/internal/engine"
	"github.com/ralph-loop/ralph/internal/models"
	"github.com/ralph-loop/ralph/internal/trace"
	"github.com/ralph-loop/ralph/internal/watcher"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the loop for the current project in the foreground",
	Long: `Starts the engine session: runs the current project's loop and streams
its output. While the session is alive it also services pause/resume/stop
requests for every registered project, so 'ralph pause' and friends work
from other terminals.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	projectPath, err := getProjectPath()
	if err != nil {
		return err
	}

	project, err := loadProject(projectPath)
	if err != nil {
		return err
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	index, err := config.LoadProjectsIndex()
	if err != nil {
		return err
	}

	// A previous session may have died mid-run; cancel stale records
	// before anything registers.
	engine.Reconcile(index)

	mgr := engine.NewManager(settings)

	exporter, err := trace.NewExporter(cmd.Context())
	if err != nil {
		log.Printf("[trace] exporter disabled: %v", err)
	}
	if exporter != nil {
		mgr.SetTrace(exporter.TraceRun)
		defer func() { _ = exporter.Shutdown(context.Background()) }()
	}

	for _, entry := range index.Projects {
		if err := mgr.Register(entry); err != nil {
			return fmt.Errorf("failed to register %s: %w", entry.Name, err)
		}
	}

	w, err := watcher.New()
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()
	for _, entry := range index.Projects {
		if err := w.WatchProject(entry.ProjectID, entry.Path); err != nil {
			log.Printf("[watcher] %s: %v", entry.ProjectID, err)
		}
	}

	events := mgr.Events()
	logCh := events.SubscribeLogs(project.ProjectID, "run-session")
	statusCh := events.SubscribeStatus(project.ProjectID, "run-session")
	defer events.UnsubscribeLogs(project.ProjectID, "run-session")
	defer events.UnsubscribeStatus(project.ProjectID, "run-session")

	ctx := cmd.Context()

	// A paused run survives restarts; picking it back up is what the user
	// asked for by running again.
	record, err := mgr.Record(project.ProjectID)
	if err != nil {
		return err
	}
	if record.Status == models.StatusPaused {
		err = mgr.ResumeLoop(ctx, project.ProjectID)
	} else {
		err = mgr.StartLoop(ctx, project.ProjectID)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", styleBrand.Render("ralph run"), styleValue.Render(project.Name))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			fmt.Println(styleWarning.Render("\nStopping..."))
			if err := mgr.StopLoop(project.ProjectID); err != nil {
				var invalid *engine.InvalidTransitionError
				if !errors.As(err, &invalid) {
					return err
				}
				return nil
			}

		case line := <-logCh:
			if line.Stderr {
				fmt.Println(styleStderr.Render(line.Content))
			} else {
				fmt.Println(line.Content)
			}

		case update := <-statusCh:
			if update.Status == models.StatusPaused {
				fmt.Printf("%s at iteration %d. 'ralph resume' to continue.\n",
					renderStatus(update.Status), update.Iteration)
				continue
			}
			if !update.Status.Terminal() {
				continue
			}
			fmt.Printf("%s after %d iteration(s)\n", renderStatus(update.Status), update.Iteration)
			if update.Error != "" {
				fmt.Println(styleError.Render(update.Error))
			}
			if update.Status == models.StatusFailed {
				return fmt.Errorf("loop failed: %s", update.Error)
			}
			return nil

		case event := <-w.Events():
			handleWatchEvent(ctx, mgr, event)
		}
	}
}

// handleWatchEvent services file changes for any registered project: hot
// prompt reloads and cross-terminal control requests.
func handleWatchEvent(ctx context.Context, mgr *engine.Manager, event watcher.Event) {
	switch event.Type {
	case watcher.EventTaskChanged:
		if err := mgr.ReloadTask(event.ProjectID); err != nil {
			log.Printf("[watcher] %s: task reload failed: %v", event.ProjectID, err)
		}
	case watcher.EventControlRequested:
		// event.Path is <project>/.ralph/control.yaml
		projectPath := filepath.Dir(filepath.Dir(event.Path))
		dispatchControl(ctx, mgr, event.ProjectID, projectPath)
	}
}

// dispatchControl consumes a pending control request and applies it to
// the project's loop.
func dispatchControl(ctx context.Context, mgr *engine.Manager, projectID, projectPath string) {
	req, err := config.LoadControl(projectPath)
	if err != nil {
		log.Printf("[control] %s: cannot read request: %v", projectID, err)
		return
	}
	if req == nil {
		return
	}
	config.ClearControl(projectPath)

	if !req.Action.Valid() {
		log.Printf("[control] %s: unknown action %q", projectID, req.Action)
		return
	}

	switch req.Action {
	case models.ControlStart:
		err = mgr.StartLoop(ctx, projectID)
	case models.ControlPause:
		err = mgr.PauseLoop(projectID)
	case models.ControlResume:
		err = mgr.ResumeLoop(ctx, projectID)
	case models.ControlStop:
		err = mgr.StopLoop(projectID)
	}
	if err != nil {
		log.Printf("[control] %s: %s failed: %v", projectID, req.Action, err)
		return
	}
	log.Printf("[control] %s: applied %s", projectID, req.Action)
}
