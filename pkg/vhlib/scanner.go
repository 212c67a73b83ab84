package vhlib

import (
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/vaulth/vhindex/pkg/logger"
)

// scanRootState is one configured scan root, resolved at Scanner construction
// time from the []scanRoot accumulated by config.apply.
type scanRootState struct {
	path      string
	recursive bool
}

// scanner walks the configured roots on a fixed interval (§4.5), filtering by
// accepted suffix and pushing a NewFile action for each match onto the
// dispatcher's inbox. It runs against an afero.Fs so tests can substitute an
// in-memory filesystem instead of touching disk.
type scanner struct {
	log       logger.Logger
	fs        afero.Fs
	roots     []scanRootState
	suffixes  map[string]struct{}
	sleep     time.Duration
	preDelay  time.Duration
	loops     int // -1 means run forever

	push func(path string, mtime int64, outOfPath bool)
	onGlobal func(GlobalEvent)

	done chan struct{}

	// ackMu/ackCond/ackCount back the §4.5 step-4/5 back-pressure barrier:
	// Acknowledge increments ackCount, and run() blocks after ScannerEnd
	// until each root's pushed count has been drained, before firing
	// ScannerAcks and advancing (invariant P3).
	ackMu    sync.Mutex
	ackCond  *sync.Cond
	ackCount int
	stopped  bool
}

func newScanner(log logger.Logger, afs afero.Fs, roots []scanRootState, suffixes map[string]struct{}, sleep, preDelay time.Duration, loops int, push func(string, int64, bool), onGlobal func(GlobalEvent)) *scanner {
	if afs == nil {
		afs = afero.NewOsFs()
	}
	sc := &scanner{
		log:      log,
		fs:       afs,
		roots:    roots,
		suffixes: suffixes,
		sleep:    sleep,
		preDelay: preDelay,
		loops:    loops,
		push:     push,
		onGlobal: onGlobal,
		done:     make(chan struct{}),
	}
	sc.ackCond = sync.NewCond(&sc.ackMu)
	go func() {
		<-sc.done
		sc.ackMu.Lock()
		sc.stopped = true
		sc.ackMu.Unlock()
		sc.ackCond.Broadcast()
	}()
	return sc
}

func (sc *scanner) stop() { close(sc.done) }

// Acknowledge registers one Acknowledge action delivered back to the
// Scanner (§4.5 step 4): the DB-Manager calls this once a non-on-demand
// file's End action has been persisted.
func (sc *scanner) Acknowledge() {
	sc.ackMu.Lock()
	sc.ackCount++
	sc.ackMu.Unlock()
	sc.ackCond.Broadcast()
}

// waitAcks blocks until expected Acknowledges have been drained, or stop()
// is called. It reports whether the wait completed (false means the
// scanner is shutting down).
func (sc *scanner) waitAcks(expected int) bool {
	if expected <= 0 {
		return true
	}
	sc.ackMu.Lock()
	defer sc.ackMu.Unlock()
	for sc.ackCount < expected {
		if sc.stopped {
			return false
		}
		sc.ackCond.Wait()
	}
	sc.ackCount -= expected
	return true
}

// run executes the scan loop: sleep, walk every root, emit ScannerBegin/End,
// repeat until loops is exhausted or stop() is called. loops < 0 means run
// until stopped (§4.5's default schedule).
func (sc *scanner) run() {
	if sc.preDelay > 0 {
		if !sc.sleepFor(sc.preDelay) {
			return
		}
	}
	for i := 0; sc.loops < 0 || i < sc.loops; i++ {
		sc.fire(EvtScannerBegin)
		counts := make([]int, len(sc.roots))
		for idx, r := range sc.roots {
			counts[idx] = sc.walkRoot(r)
		}
		sc.fire(EvtScannerEnd)
		// step 4: for each root, wait for exactly its pushed count of
		// Acknowledges before moving on (back-pressure barrier).
		for _, count := range counts {
			if !sc.waitAcks(count) {
				return
			}
		}
		sc.fire(EvtScannerAcks)
		if sc.loops >= 0 && i == sc.loops-1 {
			return
		}
		if !sc.sleepFor(sc.sleep) {
			return
		}
	}
}

func (sc *scanner) fire(ev GlobalEvent) {
	if sc.onGlobal != nil {
		sc.onGlobal(ev)
	}
}

func (sc *scanner) sleepFor(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-sc.done:
		return false
	}
}

// walkRoot walks root r, pushing a NewFile action for every matching path,
// and returns the number of files actually pushed so the caller can size
// the matching Acknowledge barrier (§4.5 step 2/4).
func (sc *scanner) walkRoot(r scanRootState) int {
	var paths []string
	err := afero.Walk(sc.fs, r.path, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return nil // best-effort: a permission error on one entry must not abort the whole walk
		}
		if info.IsDir() {
			if !r.recursive && p != r.path {
				return filepath.SkipDir
			}
			return nil
		}
		if !suffixMatches(p, sc.suffixes) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		sc.log.Warning("scan root failed: path=%s: %v", r.path, err)
		return 0
	}
	sort.Strings(paths)
	pushed := 0
	for _, p := range paths {
		info, err := sc.fs.Stat(p)
		if err != nil {
			continue
		}
		sc.push(p, info.ModTime().UnixNano(), false)
		pushed++
	}
	return pushed
}
