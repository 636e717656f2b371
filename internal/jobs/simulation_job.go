package jobs

import (
	"context"
	"log/slog"

	"tracker/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// SimulationJob drives the movement simulation on a fixed schedule.
// Each run advances every activated order by one step and publishes the
// resulting location events.
type SimulationJob struct {
	handler commands.TickActiveOrdersCommandHandler
	cron    *cron.Cron
	spec    string
	logger  *slog.Logger
}

// NewSimulationJob creates a job that ticks active orders on the given
// cron spec. The spec uses a seconds field, e.g. "*/2 * * * * *" for a
// two second cadence.
func NewSimulationJob(
	handler commands.TickActiveOrdersCommandHandler,
	spec string,
	logger *slog.Logger,
) *SimulationJob {
	return &SimulationJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		spec:    spec,
		logger:  logger.With("component", "simulation_job"),
	}
}

// Start schedules the simulation runs.
func (j *SimulationJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		ctx := context.Background()
		cmd := commands.NewTickActiveOrdersCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Simulation round failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Simulation job started", "spec", j.spec)
	return nil
}

// Stop stops the simulation job. Runs already in flight complete.
func (j *SimulationJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Simulation job stopped")
}
