package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ralph-loop/ralph/internal/adapter"
	"github.com/ralph-loop/ralph/internal/config"
	"github.com/ralph-loop/ralph/internal/models"
)

// autoDecideMarker heads the policy block prepended to every task prompt
// so the agent never blocks waiting for a human.
const autoDecideMarker = "[Ralph Auto-Decision Policy]"

var autoDecidePolicy = strings.Join([]string{
	autoDecideMarker,
	"You MUST NOT ask the user any questions during execution.",
	"Assume the user is away and cannot respond.",
	"If multiple valid choices exist, prefer the more maintainable, clear, engineering-oriented option.",
	"If required information is missing, make reasonable assumptions and proceed without blocking.",
	"Never pause for clarification; log assumptions in the output when necessary.",
}, "\n")

// TraceFunc starts observation of one run and returns the closer called
// with the final status and iteration count.
type TraceFunc func(projectID, cli string) func(status string, iterations int)

// projectState is the in-memory side of one registered project.
type projectState struct {
	entry  models.ProjectEntry
	record *models.ExecutionRecord
	task   *models.Task
	logs   *LogBuffer

	pause atomic.Bool
	stop  atomic.Bool

	// prompt is the live prompt for the next iteration; the task watcher
	// refreshes it when task.yaml changes on disk.
	prompt string

	runLines []models.LogLine
	runStart time.Time
	traceEnd func(status string, iterations int)
}

// Manager owns the project registry and every loop's state machine. All
// transitions for a project happen under the manager lock, so observers
// see them in a single order.
type Manager struct {
	mu       sync.Mutex
	projects map[string]*projectState

	events   *Broadcaster
	sched    *Scheduler
	settings *models.Settings

	spawn SpawnFunc
	trace TraceFunc
}

// NewManager creates a manager with the settings' concurrency cap.
func NewManager(settings *models.Settings) *Manager {
	if settings == nil {
		settings = models.NewSettings()
	}
	return &Manager{
		projects: make(map[string]*projectState),
		events:   NewBroadcaster(),
		sched:    NewScheduler(settings.Cap()),
		settings: settings,
		spawn:    Spawn,
	}
}

// SetSpawn replaces the subprocess factory (tests).
func (m *Manager) SetSpawn(spawn SpawnFunc) { m.spawn = spawn }

// SetTrace installs a per-run observation hook.
func (m *Manager) SetTrace(trace TraceFunc) { m.trace = trace }

// Events exposes the event fan-out for subscribers.
func (m *Manager) Events() *Broadcaster { return m.events }

// Register adds a project to the registry, loading its record and task
// from disk. Records are left as persisted; run Reconcile on the index
// before registering if this is a fresh start.
func (m *Manager) Register(entry models.ProjectEntry) error {
	record, err := config.LoadRecord(entry.Path)
	if err != nil {
		return err
	}
	if record == nil {
		record = models.NewExecutionRecord(entry.ProjectID)
	}
	task, err := config.LoadTask(entry.Path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	state := &projectState{
		entry:  entry,
		record: record,
		task:   task,
		logs:   NewLogBuffer(),
	}
	if task != nil {
		state.prompt = task.Prompt
	}
	m.projects[entry.ProjectID] = state
	return nil
}

// Record returns a copy of the project's execution record.
func (m *Manager) Record(projectID string) (models.ExecutionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.projects[projectID]
	if !ok {
		return models.ExecutionRecord{}, ErrNotFound
	}
	return *state.record, nil
}

// Task returns a copy of the project's task, or nil when unconfigured.
func (m *Manager) Task(projectID string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.projects[projectID]
	if !ok {
		return nil, ErrNotFound
	}
	if state.task == nil {
		return nil, nil
	}
	task := *state.task
	return &task, nil
}

// RecentLogs returns the project's buffered output lines.
func (m *Manager) RecentLogs(projectID string) ([]models.LogLine, error) {
	m.mu.Lock()
	state, ok := m.projects[projectID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return state.logs.Recent(), nil
}

// ReloadTask re-reads task.yaml from disk and refreshes the live prompt,
// so the next iteration picks up edits.
func (m *Manager) ReloadTask(projectID string) error {
	m.mu.Lock()
	state, ok := m.projects[projectID]
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	task, err := config.LoadTask(state.entry.Path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if task != nil {
		// Only the prompt is hot-reloaded; CLI and limits apply from the
		// next start.
		state.prompt = ensurePromptPolicy(task.Prompt)
		if !state.record.Status.Active() {
			state.task = task
		}
	}
	return nil
}

// StartLoop validates the request, moves the project to queued, and
// launches it immediately when a slot is free.
func (m *Manager) StartLoop(ctx context.Context, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.projects[projectID]
	if !ok {
		return ErrNotFound
	}
	if state.record.Status.Active() {
		return fmt.Errorf("%w: status %s", ErrAlreadyRunning, state.record.Status)
	}
	if !state.record.Status.Startable() {
		return &InvalidTransitionError{From: state.record.Status, To: models.StatusQueued}
	}

	task, err := config.LoadTask(state.entry.Path)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrNoTask
	}
	if !task.CLI.Valid() {
		return fmt.Errorf("task has unsupported cli %q", task.CLI)
	}
	agent, err := adapter.ForType(task.CLI, m.settings)
	if err != nil {
		return err
	}
	if !agent.Installed() {
		return fmt.Errorf("%s is not installed; set its path in settings.yaml", agent.Name())
	}

	if policy := ensurePromptPolicy(task.Prompt); policy != task.Prompt {
		task.Prompt = policy
		task.UpdatedAt = time.Now().UTC()
		if err := config.SaveTask(state.entry.Path, task); err != nil {
			return err
		}
	}
	if task.AutoInitGit {
		if err := InitGitRepo(state.entry.Path); err != nil {
			return fmt.Errorf("auto git init failed: %w", err)
		}
	}

	state.task = task
	state.prompt = task.Prompt
	state.pause.Store(false)
	state.stop.Store(false)
	state.logs.Clear()
	state.runLines = nil

	rec := state.record
	rec.Status = models.StatusQueued
	rec.Iteration = 0
	rec.MaxIterations = task.MaxIterations
	rec.StartedAt = nil
	rec.PausedAt = nil
	rec.CompletedAt = nil
	rec.ElapsedMs = 0
	rec.LastError = ""
	rec.Summary = ""
	m.persistLocked(state)

	if m.sched.Request(projectID) {
		m.launchLocked(ctx, state)
	}
	return nil
}

// PauseLoop requests a pause: the current iteration finishes, then the
// loop parks. Valid only while running.
func (m *Manager) PauseLoop(projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.projects[projectID]
	if !ok {
		return ErrNotFound
	}
	if state.record.Status != models.StatusRunning {
		return &InvalidTransitionError{From: state.record.Status, To: models.StatusPausing}
	}

	state.record.Status = models.StatusPausing
	m.persistLocked(state)
	state.pause.Store(true)
	return nil
}

// ResumeLoop re-enters a paused project into the scheduler queue.
func (m *Manager) ResumeLoop(ctx context.Context, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.projects[projectID]
	if !ok {
		return ErrNotFound
	}
	if state.record.Status != models.StatusPaused {
		return &InvalidTransitionError{From: state.record.Status, To: models.StatusQueued}
	}

	// A paused record outlives the session that wrote it; the task file
	// may be gone by the time a new session resumes.
	if state.task == nil {
		task, err := config.LoadTask(state.entry.Path)
		if err != nil {
			return err
		}
		if task == nil {
			return ErrNoTask
		}
		state.task = task
		state.prompt = ensurePromptPolicy(task.Prompt)
	}

	state.pause.Store(false)
	state.stop.Store(false)
	state.record.Status = models.StatusQueued
	state.record.PausedAt = nil
	m.persistLocked(state)

	if m.sched.Request(projectID) {
		m.launchLocked(ctx, state)
	}
	return nil
}

// StopLoop cancels a run. Queued and paused projects cancel immediately;
// running or pausing projects get the stop flag and cancel once the
// subprocess is down.
func (m *Manager) StopLoop(projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.projects[projectID]
	if !ok {
		return ErrNotFound
	}

	switch state.record.Status {
	case models.StatusQueued:
		m.sched.Cancel(projectID)
		m.finishLocked(state, Result{
			Status:    models.StatusCancelled,
			Iteration: state.record.Iteration,
			Summary:   "stopped before start",
		})
		return nil
	case models.StatusRunning, models.StatusPausing:
		state.stop.Store(true)
		return nil
	case models.StatusPaused:
		m.finishLocked(state, Result{
			Status:    models.StatusCancelled,
			Iteration: state.record.Iteration,
			Summary:   "stopped while paused",
		})
		return nil
	}
	return &InvalidTransitionError{From: state.record.Status, To: models.StatusCancelled}
}

// launchLocked moves a queued project to running and starts its loop
// goroutine. Caller holds m.mu.
func (m *Manager) launchLocked(ctx context.Context, state *projectState) {
	rec := state.record
	rec.Status = models.StatusRunning
	if rec.StartedAt == nil {
		now := time.Now().UTC()
		rec.StartedAt = &now
	}
	state.runStart = time.Now().UTC()
	if m.trace != nil && state.traceEnd == nil {
		state.traceEnd = m.trace(state.entry.ProjectID, string(state.task.CLI))
	}
	m.persistLocked(state)

	go m.runLoop(ctx, state)
}

// runLoop executes the iteration loop for one project and finalizes its
// record when the loop returns.
func (m *Manager) runLoop(ctx context.Context, state *projectState) {
	task := state.task
	projectID := state.entry.ProjectID

	agent, err := adapter.ForType(task.CLI, m.settings)
	if err != nil {
		m.mu.Lock()
		m.finishLocked(state, Result{Status: models.StatusFailed, ErrMsg: err.Error()})
		m.mu.Unlock()
		return
	}

	var commit func(int)
	if task.AutoCommit {
		committer := &AutoCommitter{
			Dir:              state.entry.Path,
			Adapter:          agent,
			SkipGitRepoCheck: task.SkipGitRepoCheck,
			Spawn:            m.spawn,
		}
		commit = committer.CommitIteration
	}

	cfg := LoopConfig{
		ProjectID: projectID,
		Dir:       state.entry.Path,
		Adapter:   agent,
		Prompt: func() string {
			m.mu.Lock()
			defer m.mu.Unlock()
			return state.prompt
		},
		Signal:           task.Signal(),
		StartIteration:   state.record.Iteration,
		MaxIterations:    task.MaxIterations,
		IterationTimeout: time.Duration(task.IterationTimeoutMs) * time.Millisecond,
		IdleTimeout:      time.Duration(task.IdleTimeoutMs) * time.Millisecond,
		SkipGitRepoCheck: task.SkipGitRepoCheck,
		Spawn:            m.spawn,
		Commit:           commit,
		OnLine: func(line models.LogLine) {
			state.logs.Append(line)
			m.mu.Lock()
			state.runLines = append(state.runLines, line)
			m.mu.Unlock()
			m.events.PublishLog(projectID, line)
		},
		OnIteration: func(n int) {
			m.mu.Lock()
			state.record.Iteration = n
			m.persistLocked(state)
			m.mu.Unlock()
		},
		PauseRequested: state.pause.Load,
		StopRequested:  state.stop.Load,
	}

	log.Printf("[loop:%s] starting with %s (iteration %d/%d)",
		projectID, agent.Name(), cfg.StartIteration, cfg.MaxIterations)
	result := RunLoop(ctx, cfg)
	log.Printf("[loop:%s] finished: %s (iteration %d)", projectID, result.Status, result.Iteration)

	m.mu.Lock()
	// A stop that raced the pause handoff wins.
	if result.Status == models.StatusPaused && state.stop.Load() {
		result.Status = models.StatusCancelled
		result.Summary = "stopped by user"
	}
	m.finishLocked(state, result)
	m.mu.Unlock()
}

// finishLocked applies a loop result to the record, persists and
// publishes it, writes the run log for terminal outcomes, and hands the
// slot to the next queued project. Caller holds m.mu.
func (m *Manager) finishLocked(state *projectState, result Result) {
	rec := state.record
	now := time.Now().UTC()

	rec.Status = result.Status
	rec.Iteration = result.Iteration
	if !state.runStart.IsZero() {
		rec.ElapsedMs += time.Since(state.runStart).Milliseconds()
		state.runStart = time.Time{}
	}

	switch result.Status {
	case models.StatusPaused:
		rec.PausedAt = &now
	case models.StatusDone:
		rec.Summary = result.Summary
		rec.CompletedAt = &now
	case models.StatusFailed:
		rec.LastError = result.ErrMsg
		rec.CompletedAt = &now
	case models.StatusCancelled:
		rec.Summary = result.Summary
		rec.CompletedAt = &now
	}
	m.persistLocked(state)

	if result.Status.Terminal() && state.task != nil {
		startedAt := now
		if rec.StartedAt != nil {
			startedAt = *rec.StartedAt
		}
		if _, err := config.WriteRunLog(state.entry.ProjectID, string(state.task.CLI),
			string(result.Status), rec.Iteration, startedAt, state.runLines); err != nil {
			log.Printf("[loop:%s] failed to write run log: %v", state.entry.ProjectID, err)
		}
		state.runLines = nil
	}
	if state.traceEnd != nil && result.Status != models.StatusPaused {
		state.traceEnd(string(result.Status), rec.Iteration)
		state.traceEnd = nil
	}

	m.admitNextLocked(state.entry.ProjectID)
}

// admitNextLocked releases the project's slot and launches the next
// queued project, skipping any whose record moved on in the meantime.
func (m *Manager) admitNextLocked(projectID string) {
	releaseID := projectID
	for {
		nextID, ok := m.sched.Release(releaseID)
		if !ok {
			return
		}
		next, exists := m.projects[nextID]
		if exists && next.record.Status == models.StatusQueued {
			m.launchLocked(context.Background(), next)
			return
		}
		releaseID = nextID
	}
}

// persistLocked writes the record to disk and publishes the update.
// Caller holds m.mu.
func (m *Manager) persistLocked(state *projectState) {
	if err := config.SaveRecord(state.entry.Path, state.record); err != nil {
		log.Printf("[manager] %s: failed to persist record: %v", state.entry.ProjectID, err)
	}
	m.events.PublishStatus(StatusUpdate{
		ProjectID: state.entry.ProjectID,
		Status:    state.record.Status,
		Iteration: state.record.Iteration,
		Error:     state.record.LastError,
	})
}

// ensurePromptPolicy prepends the auto-decision policy unless the prompt
// already carries it.
func ensurePromptPolicy(prompt string) string {
	if strings.Contains(prompt, autoDecideMarker) {
		return prompt
	}
	return autoDecidePolicy + "\n\n" + prompt
}
