// Package jobs provides scheduled background tasks for the tracker service.
//
// Jobs are cron-based, built on github.com/robfig/cron/v3 with a seconds
// field enabled.
//
// # Available Jobs
//
// SimulationJob - advances every activated order by one simulation step and
// publishes the resulting location events. Its cadence comes from
// configuration, two seconds by default.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(tickHandler, "*/2 * * * * *", logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Per-order simulation failures never abort a round; they are logged by the
// simulation engine. The job itself only reports scheduling errors.
package jobs
