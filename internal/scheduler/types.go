package scheduler

import "time"

// ScheduleEvent represents a pending cron-triggered rescan in the scheduler
// heap (§4.5.2's ScannerSchedule directive). It is in-memory only — the
// heap is rebuilt from the configured roots' cron expressions whenever the
// Handle is (re)configured, there is nothing to recover after a restart.
type ScheduleEvent struct {
	// RootPath is the scan root to rescan when TriggerAt is reached.
	RootPath string
	// TriggerAt is the wall-clock time when this root should be rescanned.
	TriggerAt time.Time
	// CronExpr is the cron expression driving recurrence. Empty means
	// one-shot — no re-scheduling after firing (not currently produced by
	// ScannerSchedule, which is always recurring, but supported by Add).
	CronExpr string
}
