package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ralph-loop/ralph/internal/config"
	"github.com/ralph-loop/ralph/internal/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage the project's loop task",
}

var taskSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update the loop task",
	RunE:  runTaskSet,
}

var taskShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured task",
	RunE:  runTaskShow,
}

var taskFlags struct {
	cli              string
	prompt           string
	promptFile       string
	maxIterations    int
	iterationTimeout time.Duration
	idleTimeout      time.Duration
	signal           string
	autoCommit       bool
	autoInitGit      bool
	skipGitRepoCheck bool
}

func init() {
	f := taskSetCmd.Flags()
	f.StringVar(&taskFlags.cli, "cli", "", "agent CLI: claude, codex, or opencode")
	f.StringVar(&taskFlags.prompt, "prompt", "", "task prompt text")
	f.StringVar(&taskFlags.promptFile, "prompt-file", "", "read the task prompt from a file")
	f.IntVar(&taskFlags.maxIterations, "max-iterations", 0, "iteration cap")
	f.DurationVar(&taskFlags.iterationTimeout, "iteration-timeout", 0, "per-iteration timeout (0 = disabled)")
	f.DurationVar(&taskFlags.idleTimeout, "idle-timeout", 0, "idle output timeout (0 = disabled)")
	f.StringVar(&taskFlags.signal, "signal", "", "completion signal the agent must emit")
	f.BoolVar(&taskFlags.autoCommit, "auto-commit", false, "commit the working tree after each iteration")
	f.BoolVar(&taskFlags.autoInitGit, "auto-init-git", false, "git init the project before the first run")
	f.BoolVar(&taskFlags.skipGitRepoCheck, "skip-git-repo-check", false, "pass --skip-git-repo-check to codex")

	taskCmd.AddCommand(taskSetCmd)
	taskCmd.AddCommand(taskShowCmd)
}

func runTaskSet(cmd *cobra.Command, args []string) error {
	projectPath, err := getProjectPath()
	if err != nil {
		return err
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	task, err := config.LoadTask(projectPath)
	if err != nil {
		return err
	}
	if task == nil {
		cli := models.CLIType(settings.Defaults.CLI)
		if taskFlags.cli != "" {
			cli = models.CLIType(taskFlags.cli)
		}
		task = models.NewTask(cli, "")
		task.MaxIterations = settings.Defaults.MaxIterations
		task.CompletionSignal = settings.Defaults.CompletionSignal
		task.AutoCommit = settings.Defaults.AutoCommit
	}

	flags := cmd.Flags()
	if flags.Changed("cli") {
		task.CLI = models.CLIType(taskFlags.cli)
	}
	if !task.CLI.Valid() {
		return fmt.Errorf("unsupported cli %q (want claude, codex, or opencode)", task.CLI)
	}
	if flags.Changed("prompt") {
		task.Prompt = taskFlags.prompt
	}
	if flags.Changed("prompt-file") {
		data, err := os.ReadFile(taskFlags.promptFile)
		if err != nil {
			return fmt.Errorf("failed to read prompt file: %w", err)
		}
		task.Prompt = string(data)
	}
	if flags.Changed("max-iterations") {
		if taskFlags.maxIterations < 1 {
			return fmt.Errorf("max-iterations must be at least 1")
		}
		task.MaxIterations = taskFlags.maxIterations
	}
	if flags.Changed("iteration-timeout") {
		task.IterationTimeoutMs = taskFlags.iterationTimeout.Milliseconds()
	}
	if flags.Changed("idle-timeout") {
		task.IdleTimeoutMs = taskFlags.idleTimeout.Milliseconds()
	}
	if flags.Changed("signal") {
		task.CompletionSignal = taskFlags.signal
	}
	if flags.Changed("auto-commit") {
		task.AutoCommit = taskFlags.autoCommit
	}
	if flags.Changed("auto-init-git") {
		task.AutoInitGit = taskFlags.autoInitGit
	}
	if flags.Changed("skip-git-repo-check") {
		task.SkipGitRepoCheck = taskFlags.skipGitRepoCheck
	}

	if strings.TrimSpace(task.Prompt) == "" {
		return fmt.Errorf("task has no prompt; pass --prompt or --prompt-file")
	}

	task.UpdatedAt = time.Now().UTC()
	if err := config.SaveTask(projectPath, task); err != nil {
		return err
	}

	fmt.Printf("%s %s, %d iterations max\n",
		styleSuccess.Render("Task saved:"), styleValue.Render(string(task.CLI)), task.MaxIterations)
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	projectPath, err := getProjectPath()
	if err != nil {
		return err
	}

	task, err := config.LoadTask(projectPath)
	if err != nil {
		return err
	}
	if task == nil {
		fmt.Println("No task configured. Run 'ralph task set' first.")
		return nil
	}

	printField := func(label, value string) {
		fmt.Printf("%s %s\n", styleLabel.Render(label+":"), styleValue.Render(value))
	}
	printField("cli", string(task.CLI))
	printField("max-iterations", fmt.Sprintf("%d", task.MaxIterations))
	printField("iteration-timeout", formatTimeoutMs(task.IterationTimeoutMs))
	printField("idle-timeout", formatTimeoutMs(task.IdleTimeoutMs))
	printField("signal", task.Signal())
	printField("auto-commit", fmt.Sprintf("%t", task.AutoCommit))
	if task.AutoInitGit {
		printField("auto-init-git", "true")
	}
	if task.SkipGitRepoCheck {
		printField("skip-git-repo-check", "true")
	}
	fmt.Println(styleLabel.Render("prompt:"))
	fmt.Println(task.Prompt)
	return nil
}

func formatTimeoutMs(ms int64) string {
	if ms <= 0 {
		return "disabled"
	}
	return (time.Duration(ms) * time.Millisecond).String()
}
