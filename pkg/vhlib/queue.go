package vhlib

import (
	"sync"
)

// Priority selects which FIFO band an entry is pushed into. High-band
// entries are always popped before any normal-band entry, matching the
// Grabber pool's queue-priority bookkeeping pattern (adapted from the
// reference's QueueManager) but generalised to a blocking two-band FIFO of
// arbitrary action payloads instead of a concurrency-limited download queue.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHigh
)

// entry is one queued action payload; its band is given by which of the
// FIFO's two slices holds it.
type entry struct {
	kind    ActionKind
	payload *FileData
}

// FIFO is the Priority FIFO of §4.1: a blocking two-band queue carrying
// (action_kind, payload) pairs. Pop blocks while both bands are empty.
// Search scans without removing; Promote moves the first predicate match
// from the normal band to the high band. A FIFO is safe for concurrent use
// by multiple producers and multiple consumers.
type FIFO struct {
	mu      sync.Mutex
	cond    *sync.Cond
	high    []entry
	normal  []entry
	closed  bool
}

// NewFIFO returns an empty, open Priority FIFO.
func NewFIFO() *FIFO {
	q := &FIFO{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues kind/payload into the named band and wakes one blocked
// consumer. Pushing to a closed queue is a no-op.
func (q *FIFO) Push(band Priority, kind ActionKind, payload *FileData) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	e := entry{kind: kind, payload: payload}
	if band == PriorityHigh {
		q.high = append(q.high, e)
	} else {
		q.normal = append(q.normal, e)
	}
	q.cond.Signal()
}

// Pop blocks until an entry is available or the queue is closed, draining
// the high band completely before any normal-band entry. Ownership of the
// payload transfers to the caller. ok is false only when the queue was
// closed and drained.
func (q *FIFO) Pop() (kind ActionKind, payload *FileData, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.high) == 0 && len(q.normal) == 0 && !q.closed {
		q.cond.Wait()
	}
	var e entry
	switch {
	case len(q.high) > 0:
		e, q.high = q.high[0], q.high[1:]
	case len(q.normal) > 0:
		e, q.normal = q.normal[0], q.normal[1:]
	default:
		return 0, nil, false
	}
	return e.kind, e.payload, true
}

// Search returns the first queued FileData (either band, high first) for
// which pred returns true, without removing it. It returns nil if nothing
// matches.
func (q *FIFO) Search(pred func(*FileData) bool) *FileData {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.high {
		if pred(e.payload) {
			return e.payload
		}
	}
	for _, e := range q.normal {
		if pred(e.payload) {
			return e.payload
		}
	}
	return nil
}

// Promote moves the first normal-band entry matching pred to the tail of the
// high band. It reports whether an entry was moved. An entry already in the
// high band is left untouched and still counts as "found" (P8 only requires
// the file not be serviced later than it otherwise would be).
func (q *FIFO) Promote(pred func(*FileData) bool) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.high {
		if pred(e.payload) {
			return true
		}
	}
	for i, e := range q.normal {
		if pred(e.payload) {
			q.normal = append(q.normal[:i], q.normal[i+1:]...)
			e.payload.Priority = PriorityHigh
			q.high = append(q.high, e)
			return true
		}
	}
	return false
}

// Len returns the total number of queued entries across both bands.
func (q *FIFO) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.high) + len(q.normal)
}

// Close marks the queue closed and wakes every blocked Pop; subsequent Pop
// calls on a drained, closed queue return ok=false immediately.
func (q *FIFO) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
