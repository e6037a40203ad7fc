package engine

import (
	"log"
	"time"

	"github.com/ralph-loop/ralph/internal/config"
	"github.com/ralph-loop/ralph/internal/models"
)

// interruptedError is recorded on runs that were active when the engine
// went down.
const interruptedError = "interrupted by engine restart"

// Reconcile walks the registered projects and cancels any execution
// record left in an active non-paused state by a crash or hard shutdown.
// Iteration counts, elapsed time, and summaries are preserved; nothing is
// respawned. Paused runs survive untouched. Returns the IDs of the
// projects that were reconciled.
func Reconcile(index *models.ProjectsIndex) []string {
	var reconciled []string
	for _, entry := range index.Projects {
		record, err := config.LoadRecord(entry.Path)
		if err != nil {
			log.Printf("[recovery] %s: cannot read record: %v", entry.ProjectID, err)
			continue
		}
		if record == nil {
			continue
		}

		switch record.Status {
		case models.StatusQueued, models.StatusRunning, models.StatusPausing:
		default:
			continue
		}

		record.Status = models.StatusCancelled
		record.LastError = interruptedError
		now := time.Now().UTC()
		record.CompletedAt = &now
		if err := config.SaveRecord(entry.Path, record); err != nil {
			log.Printf("[recovery] %s: cannot save record: %v", entry.ProjectID, err)
			continue
		}
		log.Printf("[recovery] %s: cancelled interrupted run (iteration %d)", entry.ProjectID, record.Iteration)
		reconciled = append(reconciled, entry.ProjectID)
	}
	return reconciled
}
