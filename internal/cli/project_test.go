package cli

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ralph-loop/ralph/internal/config"
	"github.com/ralph-loop/ralph/internal/models"
)

func TestLoadProjectMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := loadProject(dir)
	if err == nil {
		t.Fatal("expected an error for a directory with no project file")
	}
	if !strings.Contains(err.Error(), "ralph init") {
		t.Errorf("error = %q, want a hint to run 'ralph init'", err)
	}
	if strings.Contains(err.Error(), "%!w") {
		t.Errorf("error = %q carries a malformed wrap verb", err)
	}
}

func TestLoadProjectRoundTrip(t *testing.T) {
	dir := t.TempDir()

	saved := models.NewProject(uuid.NewString(), "demo", dir)
	if err := config.SaveProject(dir, saved); err != nil {
		t.Fatal(err)
	}

	project, err := loadProject(dir)
	if err != nil {
		t.Fatal(err)
	}
	if project.ProjectID != saved.ProjectID || project.Name != "demo" {
		t.Errorf("project = %+v", project)
	}
}
