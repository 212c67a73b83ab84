package vhlib

import "sync"

// barrier is the reusable pause/resume primitive §4.11 describes: pushing a
// pause request makes the owning worker signal "entering pause" on Entered
// and then block until Resume is called. A second Pause call before the
// matching Resume returns ErrBarrierAlreadyPaused.
type barrier struct {
	mu      sync.Mutex
	paused  bool
	entered chan struct{}
	resume  chan struct{}
}

func newBarrier() *barrier {
	return &barrier{entered: make(chan struct{}), resume: make(chan struct{})}
}

// Pause arms the barrier; the caller should then wait on WaitEntered.
func (b *barrier) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.paused {
		return ErrBarrierAlreadyPaused
	}
	b.paused = true
	b.entered = make(chan struct{})
	b.resume = make(chan struct{})
	return nil
}

// WaitEntered blocks until the owning worker has reached a checkpoint and
// called Enter.
func (b *barrier) WaitEntered() {
	b.mu.Lock()
	ch := b.entered
	b.mu.Unlock()
	<-ch
}

// Enter is called by the owning worker at a safe checkpoint; it signals
// WaitEntered and then blocks until Resume is called.
func (b *barrier) Enter() {
	b.mu.Lock()
	if !b.paused {
		b.mu.Unlock()
		return
	}
	entered, resume := b.entered, b.resume
	b.mu.Unlock()
	close(entered)
	<-resume
}

// Resume releases a worker blocked in Enter and clears the paused flag.
func (b *barrier) Resume() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.paused {
		return
	}
	b.paused = false
	close(b.resume)
}
