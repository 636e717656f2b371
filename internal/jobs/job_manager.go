package jobs

import (
	"fmt"
	"log/slog"

	"tracker/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop background jobs.
type JobManager struct {
	simulationJob *SimulationJob
}

// NewJobManager creates a job manager with all required jobs.
func NewJobManager(
	tickHandler commands.TickActiveOrdersCommandHandler,
	tickSpec string,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		simulationJob: NewSimulationJob(tickHandler, tickSpec, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.simulationJob.Start(); err != nil {
		return fmt.Errorf("failed to start simulation job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.simulationJob.Stop()
}
