// Package scheduler is grounded on the teacher's own scheduler package
// (container/heap min-heap, active-object goroutine, 60s max-sleep-cap to
// tolerate clock jumps), generalised from "fire a download by item hash"
// to "fire an out-of-cycle rescan by scan-root path" per §4.5.2.
package scheduler

import (
	"container/heap"
	"context"
	"time"

	"github.com/adhocore/gronx"
)

const maxSleepCap = 60 * time.Second

// Scheduler manages cron-triggered rescan events using a min-heap. It runs
// a background goroutine that sleeps until the next event's trigger time,
// then calls the onTrigger callback with the scan root's path.
type Scheduler struct {
	addChan    chan ScheduleEvent
	removeChan chan string
	ctx        context.Context
}

// New creates and starts a new Scheduler. onTrigger is invoked (on the
// scheduler's own goroutine) when a scheduled rescan fires; the scheduler
// goroutine exits when ctx is cancelled.
func New(ctx context.Context, onTrigger func(rootPath string)) *Scheduler {
	s := &Scheduler{
		addChan:    make(chan ScheduleEvent),
		removeChan: make(chan string),
		ctx:        ctx,
	}
	go s.run(onTrigger)
	return s
}

// Add enqueues a new cron-triggered schedule event.
func (s *Scheduler) Add(event ScheduleEvent) {
	select {
	case s.addChan <- event:
	case <-s.ctx.Done():
	}
}

// Remove cancels a scheduled rescan by root path.
func (s *Scheduler) Remove(rootPath string) {
	select {
	case s.removeChan <- rootPath:
	case <-s.ctx.Done():
	}
}

// run is the core scheduler goroutine implementing the active-object
// pattern. It maintains a min-heap of events and sleeps with a 60s
// max-sleep-cap. For recurring events (CronExpr != ""), after firing it
// computes the next occurrence and re-adds it to the heap automatically.
func (s *Scheduler) run(onTrigger func(string)) {
	h := &scheduleHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			return nil
		}
		next := (*h)[0].TriggerAt
		dur := time.Until(next)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case event := <-s.addChan:
			heapPush(h, event)
			timerCh = resetTimer()

		case root := <-s.removeChan:
			heapRemoveByRoot(h, root)
			timerCh = resetTimer()

		case <-timerCh:
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].TriggerAt.After(now) {
				event := heapPop(h)
				onTrigger(event.RootPath)
				if event.CronExpr != "" {
					if next, err := nextCronOccurrence(event.CronExpr, time.Now()); err == nil {
						heapPush(h, ScheduleEvent{RootPath: event.RootPath, TriggerAt: next, CronExpr: event.CronExpr})
					}
				}
			}
			timerCh = resetTimer()
		}
	}
}

// nextCronOccurrence returns the next time the cron expression fires
// strictly after start.
func nextCronOccurrence(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}

// ScheduleFromCron builds the first ScheduleEvent for a newly configured
// ScannerSchedule(path, cronExpr) directive, or an error if the expression
// cannot be parsed.
func ScheduleFromCron(rootPath, cronExpr string, now time.Time) (ScheduleEvent, error) {
	next, err := nextCronOccurrence(cronExpr, now)
	if err != nil {
		return ScheduleEvent{}, err
	}
	return ScheduleEvent{RootPath: rootPath, TriggerAt: next, CronExpr: cronExpr}, nil
}
