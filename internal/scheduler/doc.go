// Package scheduler provides cron-triggered out-of-cycle rescans for the
// indexer's scan roots (§4.5.2's ScannerSchedule directive). It implements
// a single-goroutine scheduler using a min-heap of ScheduleEvents sorted by
// trigger time, with a 60-second max-sleep-cap to handle NTP steps, DST
// transitions, and system sleep (macOS monotonic clock pause).
//
// The scheduler is a Handle-level component that fires events and calls a
// registered onTrigger callback to re-engage a single scan root ahead of
// the scanner's own fixed-interval schedule. It does not persist state —
// the scheduler heap is rebuilt from the configured roots' cron
// expressions whenever ScannerSchedule directives are applied.
package scheduler
