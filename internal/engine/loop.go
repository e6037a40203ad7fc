package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ralph-loop/ralph/internal/adapter"
	"github.com/ralph-loop/ralph/internal/models"
)

// TerminateGrace is how long an agent gets between SIGTERM and SIGKILL.
const TerminateGrace = 5 * time.Second

// LoopConfig configures one execution loop. Hooks left nil fall back to
// real implementations (or no-ops for the observers).
type LoopConfig struct {
	ProjectID string
	Dir       string
	Adapter   adapter.Adapter

	// Prompt returns the current task prompt. Called at the top of every
	// iteration so edits land in the next invocation.
	Prompt func() string

	Signal           string
	StartIteration   int
	MaxIterations    int
	IterationTimeout time.Duration // 0 = disabled
	IdleTimeout      time.Duration // 0 = disabled
	SkipGitRepoCheck bool

	// Test hooks and observers.
	Spawn          SpawnFunc
	Commit         func(iteration int)
	OnIteration    func(n int)
	OnLine         func(models.LogLine)
	PauseRequested func() bool
	StopRequested  func() bool
}

// Result is the final disposition of a loop run. Status is one of
// paused, done, failed, cancelled.
type Result struct {
	Status    models.Status
	Iteration int
	Summary   string
	ErrMsg    string
}

// iterState collects what happened while streaming one subprocess.
type iterState struct {
	completed bool
	stopped   bool
	errMsg    string // fatal stderr or timeout; terminal when set
}

// RunLoop drives iterations until the completion signal, the iteration
// cap, a failure, or an external pause/stop request.
func RunLoop(ctx context.Context, cfg LoopConfig) Result {
	spawn := cfg.Spawn
	if spawn == nil {
		spawn = Spawn
	}

	iteration := cfg.StartIteration
	for {
		if cfg.StopRequested != nil && cfg.StopRequested() {
			return Result{Status: models.StatusCancelled, Iteration: iteration, Summary: "stopped by user"}
		}
		if ctx.Err() != nil {
			return Result{Status: models.StatusCancelled, Iteration: iteration, Summary: "context cancelled"}
		}
		if cfg.PauseRequested != nil && cfg.PauseRequested() {
			return Result{Status: models.StatusPaused, Iteration: iteration, Summary: "paused by user"}
		}
		if iteration >= cfg.MaxIterations {
			return Result{Status: models.StatusDone, Iteration: iteration, Summary: "reached iteration limit"}
		}

		inv := cfg.Adapter.BuildInvocation(cfg.Prompt(), cfg.Dir, adapter.Options{
			SkipGitRepoCheck: cfg.SkipGitRepoCheck,
		})
		proc, err := spawn(inv)
		if err != nil {
			return Result{Status: models.StatusFailed, Iteration: iteration, ErrMsg: err.Error()}
		}

		state := streamIteration(ctx, cfg, proc, iteration+1)
		exitCode := proc.ExitCode()

		if state.stopped {
			return Result{Status: models.StatusCancelled, Iteration: iteration, Summary: "stopped by user"}
		}
		if state.errMsg != "" {
			return Result{Status: models.StatusFailed, Iteration: iteration, ErrMsg: state.errMsg}
		}

		// The iteration ran to a natural end: count it. The iteration
		// advance is published only after its log entries.
		iteration++
		if cfg.OnIteration != nil {
			cfg.OnIteration(iteration)
		}
		if cfg.Commit != nil {
			cfg.Commit(iteration)
		}

		switch adapter.ClassifyExit(exitCode, state.completed) {
		case adapter.OutcomeSucceeded:
			return Result{Status: models.StatusDone, Iteration: iteration, Summary: "completion signal received"}
		case adapter.OutcomeFailed:
			return Result{
				Status:    models.StatusFailed,
				Iteration: iteration,
				ErrMsg:    fmt.Sprintf("agent exited with code %d", exitCode),
			}
		}
		// OutcomeContinue: next iteration
	}
}

// streamIteration drains one subprocess, scanning for the completion
// signal, fatal stderr, and timeouts. It returns after the process has
// been reaped.
func streamIteration(ctx context.Context, cfg LoopConfig, proc Proc, iterNum int) iterState {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	start := time.Now()
	lastOutput := start
	var state iterState
	terminating := false

	terminate := func() {
		if !terminating {
			terminating = true
			go proc.Terminate(TerminateGrace)
		}
	}

	lines := proc.Lines()
	for lines != nil {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			lastOutput = time.Now()

			parsed := cfg.Adapter.ParseLine(line.Text)
			stderrLine := line.Stderr && !cfg.Adapter.StderrIsOutput()
			entry := models.LogLine{
				Iteration: iterNum,
				Timestamp: line.Time,
				Content:   parsed.Content,
				Stderr:    stderrLine,
			}
			if cfg.OnLine != nil {
				cfg.OnLine(entry)
			}

			if line.Stderr && state.errMsg == "" {
				if msg, fatal := cfg.Adapter.FatalStderr(line.Text); fatal {
					state.errMsg = msg
					terminate()
				}
			}
			// The signal only counts on the agent's output stream;
			// stderr diagnostics that echo it do not finish the run.
			if !state.completed && !stderrLine && cfg.Adapter.DetectCompletion(line.Text, cfg.Signal) {
				// Signal seen: the work is finished, kill the rest of
				// the turn.
				state.completed = true
				terminate()
			}

		case <-ticker.C:
			if state.errMsg != "" || state.completed {
				continue
			}
			if cfg.StopRequested != nil && cfg.StopRequested() {
				state.stopped = true
				terminate()
				continue
			}
			if ctx.Err() != nil {
				state.stopped = true
				terminate()
				continue
			}
			if cfg.IterationTimeout > 0 && time.Since(start) > cfg.IterationTimeout {
				state.errMsg = fmt.Sprintf("iteration exceeded %s", cfg.IterationTimeout)
				terminate()
				continue
			}
			if cfg.IdleTimeout > 0 && time.Since(lastOutput) > cfg.IdleTimeout {
				state.errMsg = fmt.Sprintf("no output for %s", cfg.IdleTimeout)
				terminate()
			}
		}
	}

	<-proc.Done()
	return state
}
