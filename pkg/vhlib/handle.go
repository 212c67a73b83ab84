package vhlib

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vaulth/vhindex/internal/scheduler"
	"github.com/vaulth/vhindex/pkg/credman"
	"github.com/vaulth/vhindex/pkg/logger"
	"github.com/vaulth/vhindex/pkg/store"
)

// Handle is the top-level component of §4.12: it owns every stage, wires
// their queues and callbacks together, and exposes the embedder surface
// (SetConfig, RegisterGrabber, Run/Uninit, Engage, Dump) on top of
// them. One Handle owns exactly one database file and one set of scan
// roots, mirroring the reference's single-download-manager-per-process
// daemon.Runner shape (internal/daemon/runner.go) adapted to a pipeline of
// stages instead of a single listener goroutine.
type Handle struct {
	log logger.Logger
	cfg *config

	mu      sync.Mutex
	running bool

	st *store.Store

	parserQ   *FIFO
	grabberQ  *FIFO
	downloadQ *FIFO

	db       *dbManager
	sc       *scanner
	disp     *dispatcher
	parsers  *parserPool
	grabbers *grabberPool
	dl       *downloader
	onDemand *onDemand
	events   *eventHandler
	router   *SchemeRouter
	stats    *Stats

	handlers Handlers

	vault  *credman.GrabberVault
	dbPath string

	sched       *scheduler.Scheduler
	schedCancel context.CancelFunc
}

// NewHandle allocates an un-configured, un-started Handle backed by the
// database at dbPath. Configure it with SetConfig and RegisterGrabber
// before calling Run.
func NewHandle(log logger.Logger, dbPath string) *Handle {
	if log == nil {
		log = logger.NewStandardLogger(nil)
	}
	return &Handle{
		log:       log,
		cfg:       newConfig(),
		dbPath:    dbPath,
		parserQ:   NewFIFO(),
		grabberQ:  NewFIFO(),
		downloadQ: NewFIFO(),
		router:    NewSchemeRouter(),
		stats:     NewStats(),
	}
}

// SetConfig applies a batch of configuration directives. It returns
// ErrConfigAfterRun if the handle has already started.
func (h *Handle) SetConfig(opts ...ConfigOption) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return ErrConfigAfterRun
	}
	for _, opt := range opts {
		h.cfg.apply(opt,
			func(id string, prio int8, metaName string) {
				if h.grabbers != nil {
					h.grabbers.SetPriority(id, prio)
				}
			},
			func(id string, enabled bool) {
				if h.grabbers != nil {
					h.grabbers.SetEnabled(id, enabled)
				}
			},
			func(id, secret string) {
				if h.vault != nil {
					if err := h.vault.Set(id, secret); err != nil {
						h.log.Error("credential vault: store secret for %s: %v", id, err)
					}
				}
			},
		)
	}
	return nil
}

// SetCredentialVault binds the encrypted store that GrabberCredential
// directives write into (§3.1). Without one, GrabberCredential is accepted
// but discarded.
func (h *Handle) SetCredentialVault(v *credman.GrabberVault) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.vault = v
}

// Credential returns the previously stored secret for grabberID, for a
// Grabber's own init step to call before Run finishes wiring the pool.
func (h *Handle) Credential(grabberID string) (string, error) {
	if h.vault == nil {
		return "", ErrNoCredentialVault
	}
	return h.vault.Get(grabberID)
}

// RegisterGrabber adds a metadata-source plugin to the rotation (§4.9). It
// must be called before Run; registering the same name twice replaces the
// earlier plugin.
func (h *Handle) RegisterGrabber(g Grabber) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return ErrConfigAfterRun
	}
	if h.grabbers == nil {
		h.grabbers = newGrabberPool(h.log, h.grabberQ, h.cfg.grabberWorkers, h.cfg.grabberTimedWait, h.stats.Group("grabbers"))
	}
	h.grabbers.Register(g)
	return nil
}

// SetGrabberEnabled toggles a registered grabber on or off at runtime,
// independent of SetConfig's GrabberState directive (which is rejected once
// the pipeline is running). An empty grabberID has no effect here — unlike
// GrabberPriority, there is no "every grabber" runtime toggle.
func (h *Handle) SetGrabberEnabled(grabberID string, enabled bool) {
	if h.grabbers != nil {
		h.grabbers.SetEnabled(grabberID, enabled)
	}
}

// SetGrabberPriority changes a registered grabber's metadata priority at
// runtime. An empty grabberID applies to every registered grabber.
func (h *Handle) SetGrabberPriority(grabberID string, priority int8) {
	if h.grabbers != nil {
		h.grabbers.SetPriority(grabberID, priority)
	}
}

// Grabbers lists every registered grabber and its runtime state, for the
// remote query surface (§4.12.2).
func (h *Handle) Grabbers() []GrabberInfo {
	if h.grabbers == nil {
		return nil
	}
	return h.grabbers.Info()
}

// RegisterFetcher binds a Fetcher to handle a URL scheme for the Downloader
// (§4.10.1). "http" and "https" are registered automatically by Run if not
// already present.
func (h *Handle) RegisterFetcher(scheme string, f Fetcher) {
	h.router.Register(scheme, f)
}

// SetHandlers installs the embedder's callback bundle. Nil fields are
// replaced with no-ops (handlers.setDefault).
func (h *Handle) SetHandlers(hs Handlers) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = hs
}

// Run validates configuration, instantiates every stage, and starts the
// pipeline. It returns ErrAlreadyRunning if called twice, or
// ErrNoScannerPaths/ErrNoScannerSuffixes if the scanner has nothing to do.
func (h *Handle) Run() error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return ErrAlreadyRunning
	}
	if len(h.cfg.roots) == 0 {
		h.mu.Unlock()
		return ErrNoScannerPaths
	}
	if len(h.cfg.suffixes) == 0 {
		h.mu.Unlock()
		return ErrNoScannerSuffixes
	}

	st, err := store.Open(h.dbPath)
	if err != nil {
		h.mu.Unlock()
		return fmt.Errorf("vhlib: open store: %w", err)
	}
	h.st = st

	h.handlers.setDefault(h.log)
	h.events = newEventHandler(&h.handlers)

	if h.grabbers == nil {
		h.grabbers = newGrabberPool(h.log, h.grabberQ, h.cfg.grabberWorkers, h.cfg.grabberTimedWait, h.stats.Group("grabbers"))
	}

	if _, ok := h.router.fetchers["http"]; !ok {
		httpFetcher := NewHTTPFetcher(DefaultRetryConfig(), 0, 10)
		h.router.Register("http", httpFetcher)
		h.router.Register("https", httpFetcher)
	}

	roots := make([]scanRootState, len(h.cfg.roots))
	for i, r := range h.cfg.roots {
		roots[i] = scanRootState{path: r.path, recursive: r.recursive}
	}

	h.db = newDBManager(h.log, h.st, h.cfg.commitInterval, roots, h.cfg.suffixes, nil)
	h.disp = newDispatcher(h.log, h.parserQ, h.grabberQ, h.downloadQ, h.db)
	h.parsers = newParserPool(h.log, h.parserQ, h.cfg.parserWorkers, nil, h.cfg.keywords)
	h.dl = newDownloader(h.log, h.downloadQ, h.router, h.cfg.destFor)
	h.onDemand = newOnDemand(h.log, h.st, h.disp, h.configuredRoots)

	h.sc = newScanner(h.log, nil, roots, h.cfg.suffixes, h.cfg.scanSleep, h.cfg.scanPreDelay, h.cfg.scanLoops,
		func(path string, mtime int64, outOfPath bool) { h.disp.post(ActionNewFile, NewFileData(path, mtime, PriorityNormal)) },
		func(ev GlobalEvent) {
			h.events.postGlobal(ev)
			if ev == EvtScannerAcks {
				h.disp.post(ActionNextLoop, &FileData{})
			}
		},
	)

	h.wireCallbacks()
	h.wireCheckpoints()

	h.events.start()
	h.db.start()
	h.disp.start()
	h.parsers.start()
	h.grabbers.start()
	h.dl.start()
	h.onDemand.start()

	h.startScheduler()

	h.running = true
	h.mu.Unlock()

	h.sc.run() // blocks the caller for loops<0 until Uninit; callers that want
	// a background scan loop running concurrently with Engage/Dump/Uninit
	// should invoke Run in its own goroutine, matching the reference's
	// Start(ctx)-blocks-until-cancel shape.

	return nil
}

// startScheduler builds a scheduler.Scheduler for every configured root that
// carries a ScannerSchedule cron expression (§4.5.2), firing Engage against
// that root ahead of the scanner's own fixed-interval loop. Roots without a
// cron expression are left to the scanner alone.
func (h *Handle) startScheduler() {
	var events []scheduler.ScheduleEvent
	now := time.Now()
	for _, r := range h.cfg.roots {
		if r.cron == "" {
			continue
		}
		ev, err := scheduler.ScheduleFromCron(r.path, r.cron, now)
		if err != nil {
			h.log.Error("scheduler: invalid cron expression for %s: %v", r.path, err)
			continue
		}
		events = append(events, ev)
	}
	if len(events) == 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.schedCancel = cancel
	h.sched = scheduler.New(ctx, func(rootPath string) { h.Engage(rootPath) })
	for _, ev := range events {
		h.sched.Add(ev)
	}
}

func (h *Handle) configuredRoots() []string {
	out := make([]string, len(h.cfg.roots))
	for i, r := range h.cfg.roots {
		out[i] = r.path
	}
	return out
}

// wireCallbacks connects every stage's onResult/onError/onMeta/onAck back
// into the Dispatcher, the DB-Manager, and the serialised event handler.
func (h *Handle) wireCallbacks() {
	h.disp.onMeta = func(ev MetaEvent, grabberID, path string, md Metadata) {
		h.events.postMeta(ev, grabberID, path, md)
	}
	h.disp.onError = h.handlers.ErrorHandler

	h.parsers.onResult = func(kind ActionKind, fd *FileData) { h.disp.post(kind, fd) }
	h.parsers.onError = h.handlers.ErrorHandler

	h.grabbers.onResult = func(kind ActionKind, fd *FileData) { h.disp.post(kind, fd) }
	h.grabbers.onError = h.handlers.ErrorHandler

	h.dl.onResult = func(kind ActionKind, fd *FileData) { h.disp.post(ActionEnd, fd) }
	h.dl.onError = h.handlers.ErrorHandler

	h.db.onAck = func(fd *FileData) {
		h.events.postOnDemand(fd.Path, EvtEnded, "", nil)
	}
	h.db.onScanAck = func(fd *FileData) {
		h.sc.Acknowledge()
	}
	h.onDemand.onEnded = func(path string) {
		h.events.postOnDemand(path, EvtEnded, "", nil)
	}
}

// wireCheckpoints points every stage's checkpoint hook at the matching
// on-demand barrier, so pauseAll/resumeAll (§4.11) can actually quiesce a
// live pipeline instead of racing against it.
func (h *Handle) wireCheckpoints() {
	h.grabbers.checkpoint = h.onDemand.grabberBarrier.Enter
	h.dl.checkpoint = h.onDemand.downloaderBarrier.Enter
	h.parsers.checkpoint = h.onDemand.parserBarrier.Enter
	h.disp.checkpoint = h.onDemand.dispatcherBarrier.Enter
	h.db.checkpoint = h.onDemand.dbBarrier.Enter
}

// Engage implements the on-demand entry point (§4.11): ask the pipeline to
// process path immediately, ahead of the scanner's own schedule.
func (h *Handle) Engage(path string) {
	h.onDemand.Engage(path)
}

// Dump triggers an immediate stats dump (§4.12.2) through every registered
// StatGroup callback.
func (h *Handle) Dump() {
	h.stats.Dump()
}

// Uninit stops every stage in the reverse of their Run order and releases
// the database handle. It is safe to call once after Run returns or from
// another goroutine while Run's scan loop is still running.
func (h *Handle) Uninit() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return ErrNotRunning
	}
	if h.schedCancel != nil {
		h.schedCancel()
		h.sched = nil
		h.schedCancel = nil
	}
	h.sc.stop()
	h.onDemand.stop()
	h.dl.stop()
	h.grabbers.stop()
	h.parsers.stop()
	h.disp.stop()
	h.db.stop()
	h.events.stop()
	h.running = false
	return h.st.Close()
}
