package vhlib

import (
	"os"

	"github.com/vaulth/vhindex/pkg/logger"
	"github.com/vaulth/vhindex/pkg/store"
	"github.com/vaulth/vhindex/pkg/vhtypes"
)

// onDemand is the single worker of §4.11 processing Engage(path) requests: it
// quiesces every downstream stage via their barriers, searches for the
// path in-flight, and either promotes it or allocates a brand-new FileData.
type onDemand struct {
	log   logger.Logger
	st    *store.Store
	disp  *dispatcher
	roots func() []string

	// barriers, paused/resumed in this fixed order: grabber, downloader,
	// parser, dispatcher, dbmanager (§4.11 step 3/5).
	grabberBarrier    *barrier
	downloaderBarrier *barrier
	parserBarrier     *barrier
	dispatcherBarrier *barrier
	dbBarrier         *barrier

	onEnded func(path string)

	inbox chan string
	done  chan struct{}
}

func newOnDemand(log logger.Logger, st *store.Store, disp *dispatcher, roots func() []string) *onDemand {
	return &onDemand{
		log:               log,
		st:                st,
		disp:              disp,
		roots:             roots,
		grabberBarrier:    newBarrier(),
		downloaderBarrier: newBarrier(),
		parserBarrier:     newBarrier(),
		dispatcherBarrier: newBarrier(),
		dbBarrier:         newBarrier(),
		inbox:             make(chan string, 64),
		done:              make(chan struct{}),
	}
}

func (o *onDemand) start() { go o.loop() }
func (o *onDemand) stop()  { close(o.done) }

// Engage enqueues an on-demand request for path; it is safe to call from any
// goroutine.
func (o *onDemand) Engage(path string) {
	select {
	case o.inbox <- path:
	case <-o.done:
	}
}

func (o *onDemand) loop() {
	for {
		select {
		case path := <-o.inbox:
			o.engage(path)
		case <-o.done:
			return
		}
	}
}

func (o *onDemand) engage(path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		o.log.Warning("on-demand engage: path unusable: %s: %v", path, err)
		return
	}
	mtime := info.ModTime().UnixNano()

	if o.isComplete(path, mtime) {
		if o.onEnded != nil {
			o.onEnded(path)
		}
		return
	}

	o.pauseAll()
	defer o.resumeAll()

	if fd := o.disp.Lookup(path); fd != nil {
		fd.Priority = PriorityHigh
		o.disp.Promote(path)
		return
	}

	fd := NewFileData(path, mtime, PriorityHigh)
	fd.OnDemand = true
	fd.OutOfPath = !o.underConfiguredRoot(path)
	o.disp.post(ActionNewFile, fd)
}

// isComplete implements the vh_dbmanager_file_complete contract resolved in
// §9: the persisted mtime matches M, interrupted is Done, and nothing is
// in flight for the path.
func (o *onDemand) isComplete(path string, mtime int64) bool {
	f, err := o.st.File(path)
	if err != nil {
		return false
	}
	return f.MTime == mtime && f.Interrupted == vhtypes.InterruptedDone && o.disp.Lookup(path) == nil
}

func (o *onDemand) underConfiguredRoot(path string) bool {
	for _, r := range o.roots() {
		if len(path) >= len(r) && path[:len(r)] == r {
			return true
		}
	}
	return false
}

func (o *onDemand) pauseAll() {
	for _, b := range []*barrier{o.grabberBarrier, o.downloaderBarrier, o.parserBarrier, o.dispatcherBarrier, o.dbBarrier} {
		b.Pause()
		b.WaitEntered()
	}
}

func (o *onDemand) resumeAll() {
	for _, b := range []*barrier{o.grabberBarrier, o.downloaderBarrier, o.parserBarrier, o.dispatcherBarrier, o.dbBarrier} {
		b.Resume()
	}
}
