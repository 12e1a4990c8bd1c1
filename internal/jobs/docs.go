// Package jobs provides scheduled background tasks for the escrow service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
// The core owns no timers; every time-driven transition is polled from here.
//
// # Available Jobs
//
// 1. AutoReleaseJob - pays out approved auto-release escrows once their expiry passes
// 2. ExpiryJob - refunds escrows that expired before their work was approved
// 3. EventRelayJob - publishes outbox events to the event bus in sequence order
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(autoRelease, expiry, relay)
//
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// On PostgreSQL the relay is also triggered by the outbox NOTIFY listener, so
// its schedule only bounds latency when notifications are lost.
//
// # Scheduling
//
// Schedules are six-field cron expressions with a seconds column, e.g.
// "*/5 * * * * *". A run still in progress when the next is due is skipped.
//
// # Error Handling
//
// - Sweeps treat business rule refusals (the escrow moved on since it was listed) as expected
// - Every escrow is settled in its own transaction; one failure does not stop the batch
// - Job runs are counted in escrow_jobs_runs_total by job and outcome
// - Failed job starts stop any already running jobs
package jobs
