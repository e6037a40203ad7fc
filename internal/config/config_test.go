package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ralph-loop/ralph/internal/models"
)

func TestGlobalDirHonorsRalphHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("RALPH_HOME", home)

	dir, err := GlobalDir()
	if err != nil {
		t.Fatalf("GlobalDir: %v", err)
	}
	if dir != home {
		t.Errorf("GlobalDir = %q, want %q", dir, home)
	}
}

func TestProjectRoundTrip(t *testing.T) {
	dir := t.TempDir()

	if p, err := LoadProject(dir); err != nil || p != nil {
		t.Fatalf("LoadProject on empty dir = (%v, %v), want (nil, nil)", p, err)
	}

	project := models.NewProject("id-1", "myproj", dir)
	if err := SaveProject(dir, project); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}

	loaded, err := LoadProject(dir)
	if err != nil || loaded == nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if loaded.ProjectID != "id-1" || loaded.Name != "myproj" || loaded.Path != dir {
		t.Errorf("loaded = %+v", loaded)
	}
	if !ProjectExists(dir) {
		t.Error("ProjectExists = false after save")
	}
}

func TestTaskRoundTrip(t *testing.T) {
	dir := t.TempDir()

	if task, err := LoadTask(dir); err != nil || task != nil {
		t.Fatalf("LoadTask on empty dir = (%v, %v), want (nil, nil)", task, err)
	}

	task := models.NewTask(models.CLICodex, "fix everything")
	task.IterationTimeoutMs = 30 * 60 * 1000
	task.SkipGitRepoCheck = true
	if err := SaveTask(dir, task); err != nil {
		t.Fatalf("SaveTask: %v", err)
	}

	loaded, err := LoadTask(dir)
	if err != nil || loaded == nil {
		t.Fatalf("LoadTask: %v", err)
	}
	if loaded.CLI != models.CLICodex || loaded.Prompt != "fix everything" {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.IterationTimeoutMs != 30*60*1000 || !loaded.SkipGitRepoCheck {
		t.Errorf("options lost: %+v", loaded)
	}
	if loaded.Signal() != models.DefaultCompletionSignal {
		t.Errorf("signal = %q", loaded.Signal())
	}
}

func TestRecordRoundTrip(t *testing.T) {
	dir := t.TempDir()

	record := models.NewExecutionRecord("id-1")
	record.Status = models.StatusPaused
	record.Iteration = 4
	now := time.Now().UTC()
	record.PausedAt = &now
	record.ElapsedMs = 90000
	before := record.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	if err := SaveRecord(dir, record); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}

	loaded, err := LoadRecord(dir)
	if err != nil || loaded == nil {
		t.Fatalf("LoadRecord: %v", err)
	}
	if loaded.Status != models.StatusPaused || loaded.Iteration != 4 || loaded.ElapsedMs != 90000 {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.PausedAt == nil {
		t.Error("PausedAt lost")
	}
	if !loaded.UpdatedAt.After(before) {
		t.Error("SaveRecord should touch UpdatedAt")
	}
}

func TestSettingsDefaultsWhenMissing(t *testing.T) {
	t.Setenv("RALPH_HOME", t.TempDir())

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if settings.Cap() != 3 {
		t.Errorf("default cap = %d, want 3", settings.Cap())
	}
	if settings.Defaults.CLI != "claude" || settings.Defaults.MaxIterations != 10 {
		t.Errorf("defaults = %+v", settings.Defaults)
	}

	settings.ConcurrencyCap = 5
	if err := SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	loaded, err := LoadSettings()
	if err != nil || loaded.ConcurrencyCap != 5 {
		t.Errorf("reloaded cap = %d (%v), want 5", loaded.ConcurrencyCap, err)
	}
}

func TestRegisterProjectAndSelfHeal(t *testing.T) {
	t.Setenv("RALPH_HOME", t.TempDir())
	dir := t.TempDir()

	if err := SaveProject(dir, models.NewProject("id-1", "proj", dir)); err != nil {
		t.Fatal(err)
	}
	if err := RegisterProject("id-1", "proj", dir); err != nil {
		t.Fatalf("RegisterProject: %v", err)
	}

	index, err := LoadProjectsIndex()
	if err != nil {
		t.Fatal(err)
	}
	if len(index.Projects) != 1 || index.Projects[0].ProjectID != "id-1" {
		t.Fatalf("index = %+v", index.Projects)
	}

	// Re-registering updates in place instead of duplicating.
	if err := RegisterProject("id-1", "renamed", dir); err != nil {
		t.Fatal(err)
	}
	index, _ = LoadProjectsIndex()
	if len(index.Projects) != 1 || index.Projects[0].Name != "renamed" {
		t.Errorf("index after re-register = %+v", index.Projects)
	}

	// Wipe the global index; EnsureProjectRegistered restores the entry
	// from the project's own metadata.
	path, _ := GlobalProjectsFile()
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := EnsureProjectRegistered(dir); err != nil {
		t.Fatalf("EnsureProjectRegistered: %v", err)
	}
	index, _ = LoadProjectsIndex()
	if len(index.Projects) != 1 {
		t.Errorf("self-heal failed: %+v", index.Projects)
	}

	if err := UnregisterProject("id-1"); err != nil {
		t.Fatal(err)
	}
	index, _ = LoadProjectsIndex()
	if len(index.Projects) != 0 {
		t.Errorf("index after unregister = %+v", index.Projects)
	}
}

func TestControlRequestLifecycle(t *testing.T) {
	dir := t.TempDir()

	if req, err := LoadControl(dir); err != nil || req != nil {
		t.Fatalf("LoadControl on empty dir = (%v, %v)", req, err)
	}

	if err := WriteControl(dir, models.ControlPause); err != nil {
		t.Fatalf("WriteControl: %v", err)
	}

	req, err := LoadControl(dir)
	if err != nil || req == nil {
		t.Fatalf("LoadControl: %v", err)
	}
	if req.Action != models.ControlPause {
		t.Errorf("action = %s, want pause", req.Action)
	}
	if req.RequestedAt.IsZero() {
		t.Error("RequestedAt not set")
	}

	ClearControl(dir)
	if req, _ := LoadControl(dir); req != nil {
		t.Error("control request survived ClearControl")
	}
	// Clearing twice is fine.
	ClearControl(dir)
}

func TestLoadYAMLRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("{{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out models.Task
	if err := LoadYAML(path, &out); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveYAMLReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.yaml")

	type doc struct {
		Value string `yaml:"value"`
	}
	if err := SaveYAML(path, &doc{Value: "first"}); err != nil {
		t.Fatal(err)
	}
	if err := SaveYAML(path, &doc{Value: "second"}); err != nil {
		t.Fatal(err)
	}

	var got doc
	if err := LoadYAML(path, &got); err != nil {
		t.Fatal(err)
	}
	if got.Value != "second" {
		t.Errorf("value = %q, want second", got.Value)
	}

	// The temp file renames over the target; nothing else may be left.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "record.yaml" {
		t.Errorf("directory not clean after save: %v", entries)
	}
}
