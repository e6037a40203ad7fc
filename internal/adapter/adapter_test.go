package adapter

import (
	"testing"

	"github.com/ralph-loop/ralph/internal/models"
)

func TestClassifyExit(t *testing.T) {
	tests := []struct {
		name      string
		exitCode  int
		completed bool
		expected  Outcome
	}{
		{name: "clean exit continues", exitCode: 0, completed: false, expected: OutcomeContinue},
		{name: "non-zero exit fails", exitCode: 1, completed: false, expected: OutcomeFailed},
		{name: "killed without signal fails", exitCode: -1, completed: false, expected: OutcomeFailed},
		{name: "signal beats clean exit", exitCode: 0, completed: true, expected: OutcomeSucceeded},
		{name: "signal beats kill code", exitCode: -1, completed: true, expected: OutcomeSucceeded},
		{name: "signal beats error code", exitCode: 2, completed: true, expected: OutcomeSucceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyExit(tt.exitCode, tt.completed); got != tt.expected {
				t.Errorf("ClassifyExit(%d, %v) = %s, want %s", tt.exitCode, tt.completed, got, tt.expected)
			}
		})
	}
}

func TestForType(t *testing.T) {
	settings := models.NewSettings()

	for _, cli := range []models.CLIType{models.CLIClaude, models.CLICodex, models.CLIOpencode} {
		agent, err := ForType(cli, settings)
		if err != nil {
			t.Fatalf("ForType(%s) error: %v", cli, err)
		}
		if agent.Type() != cli {
			t.Errorf("ForType(%s).Type() = %s", cli, agent.Type())
		}
	}

	if _, err := ForType(models.CLIType("cursor"), settings); err == nil {
		t.Error("ForType accepted an unknown cli")
	}
}
