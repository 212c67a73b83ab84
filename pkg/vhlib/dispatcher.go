package vhlib

import (
	"sync"

	"github.com/vaulth/vhindex/pkg/logger"
)

// dispatcher is the single reader of the scanner/on-demand inbox and the
// single writer into the parser and grabber queues (§4.7): it is the place
// that decides, from a FileData's current Step, which downstream queue it
// moves to next, and it is the only stage allowed to flip Step.
type dispatcher struct {
	log logger.Logger

	inbox chan dispAction

	parserQ    *FIFO
	grabberQ   *FIFO
	downloadQ  *FIFO
	db         *dbManager

	onMeta   func(MetaEvent, string, string, Metadata)
	onError  ErrorHandler

	inFlightMu sync.Mutex
	inFlight   map[string]*FileData // path -> live record, for Search/Promote by path

	checkpoint func()

	done chan struct{}
}

type dispAction struct {
	kind ActionKind
	fd   *FileData
}

func newDispatcher(log logger.Logger, parserQ, grabberQ, downloadQ *FIFO, db *dbManager) *dispatcher {
	return &dispatcher{
		log:       log,
		inbox:     make(chan dispAction, 256),
		parserQ:   parserQ,
		grabberQ:  grabberQ,
		downloadQ: downloadQ,
		db:        db,
		inFlight:  make(map[string]*FileData),
		done:      make(chan struct{}),
	}
}

func (d *dispatcher) start() { go d.loop() }
func (d *dispatcher) stop()  { close(d.done) }

// post is called by the Scanner (new/changed file) or the OnDemand component
// (explicit request) to introduce or re-drive a FileData.
func (d *dispatcher) post(kind ActionKind, fd *FileData) {
	select {
	case d.inbox <- dispAction{kind: kind, fd: fd}:
	case <-d.done:
	}
}

func (d *dispatcher) loop() {
	for {
		if d.checkpoint != nil {
			d.checkpoint()
		}
		select {
		case act := <-d.inbox:
			d.handle(act)
		case <-d.done:
			return
		}
	}
}

func (d *dispatcher) handle(act dispAction) {
	fd := act.fd
	switch act.kind {
	case ActionNewFile:
		d.db.post(ActionNewFile, fd)
		fd.Step = StepParsing
		d.inFlightMu.Lock()
		d.inFlight[fd.Path] = fd
		d.inFlightMu.Unlock()
		d.parserQ.Push(fd.Priority, ActionInsertP, fd)
	case ActionInsertP, ActionUpdateP:
		// delivered back from the Parser once extraction finished.
		d.db.post(act.kind, fd)
		for _, m := range fd.ParserMeta {
			d.emitMeta(EvtParserMeta, "", fd.Path, m)
		}
		fd.Step = StepGrabbing
		fd.Wait = true
		d.grabberQ.Push(fd.Priority, ActionInsertG, fd)
	case ActionInsertG, ActionUpdateG:
		// delivered back from a Grabber pool worker once one plugin ran
		// (or once the rotation is exhausted, via GrabbersExhausted).
		d.db.post(act.kind, fd)
		for _, m := range fd.GrabberMeta {
			d.emitMeta(EvtGrabberMeta, fd.CurrentGrabber, fd.Path, m)
		}
		if !fd.GrabbersExhausted {
			d.grabberQ.Push(fd.Priority, ActionInsertG, fd) // re-queue for the next grabber in rotation
			return
		}
		if len(fd.Downloads) > 0 {
			fd.Step = StepDownloading
			d.downloadQ.Push(fd.Priority, ActionInsertG, fd)
			return
		}
		fd.Step = StepEnding
		d.db.post(ActionEnd, fd)
		d.inFlightMu.Lock()
		delete(d.inFlight, fd.Path)
		d.inFlightMu.Unlock()
	case ActionEnd:
		fd.Step = StepEnding
		d.db.post(ActionEnd, fd)
		d.inFlightMu.Lock()
		delete(d.inFlight, fd.Path)
		d.inFlightMu.Unlock()
	case ActionNextLoop:
		d.db.post(ActionNextLoop, fd)
	}
}

func (d *dispatcher) emitMeta(ev MetaEvent, grabberID, path string, m MetaPair) {
	if d.onMeta != nil {
		d.onMeta(ev, grabberID, path, Metadata{Name: m.Key, Value: m.Value, Lang: m.Language, Group: m.Group})
	}
}

// Lookup returns the in-flight FileData for path, or nil if it is not
// currently owned by any queue (already ended, or never seen).
func (d *dispatcher) Lookup(path string) *FileData {
	d.inFlightMu.Lock()
	defer d.inFlightMu.Unlock()
	return d.inFlight[path]
}

// Promote elevates path to the high-priority band of whichever queue
// currently holds it, implementing the on-demand component's P8 guarantee.
func (d *dispatcher) Promote(path string) bool {
	pred := func(fd *FileData) bool { return fd.Path == path }
	if d.parserQ.Promote(pred) {
		return true
	}
	if d.grabberQ.Promote(pred) {
		return true
	}
	return d.downloadQ.Promote(pred)
}
