package vhlib

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vaulth/vhindex/pkg/logger"
)

// Grabber is the contract a metadata-source plugin implements (§4.9). Grab is
// called once per file per grabber per pass; it receives the metadata the
// Parser has produced (results of earlier grabbers in the rotation are not
// passed) and returns what it found plus any artwork/side-car items worth
// downloading.
type Grabber interface {
	Name() string
	Grab(ctx context.Context, path string, known []MetaPair) (GrabResult, error)
}

// CapsProvider is an optional Grabber extension declaring the capability
// mask (§4.9) a plugin accepts: the FileTypes it is willing to run against.
// A Grabber that does not implement it is treated as unrestricted, so the
// mask stays purely additive for plugins with no notion of one.
type CapsProvider interface {
	Caps() []FileType
}

// GrabResult is the output of one Grabber.Grab call.
type GrabResult struct {
	Meta      []MetaPair
	Downloads []DownloadItem
}

// grabberEntry is one registered plugin plus its runtime state. sem is the
// plugin's global mutex (§4.9: "one plugin runs at most once concurrently
// globally"), modeled as a capacity-1 token channel so both a non-blocking
// and a timed acquire are possible.
type grabberEntry struct {
	g        Grabber
	priority int8
	enabled  bool
	caps     []FileType
	sem      chan struct{}
}

func newGrabberEntry(g Grabber) *grabberEntry {
	e := &grabberEntry{g: g, enabled: true, sem: make(chan struct{}, 1)}
	e.sem <- struct{}{}
	if cp, ok := g.(CapsProvider); ok {
		e.caps = cp.Caps()
	}
	return e
}

// acceptsType reports whether t is within the entry's capability mask. An
// entry with no declared caps accepts every type.
func (e *grabberEntry) acceptsType(t FileType) bool {
	if len(e.caps) == 0 {
		return true
	}
	for _, c := range e.caps {
		if c == t {
			return true
		}
	}
	return false
}

// tryLock attempts the non-blocking acquire of Pass A.
func (e *grabberEntry) tryLock() bool {
	select {
	case <-e.sem:
		return true
	default:
		return false
	}
}

// timedLock attempts the 200ms timed acquire of Pass B.
func (e *grabberEntry) timedLock(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-e.sem:
		return true
	case <-t.C:
		return false
	}
}

func (e *grabberEntry) unlock() {
	e.sem <- struct{}{}
}

// grabberPool runs the registered Grabbers against files popped from the
// grabber queue, at most workers concurrently, and forwards the result back
// to the Dispatcher as an InsertG/UpdateG action (§4.9/§5).
type grabberPool struct {
	log     logger.Logger
	queue   *FIFO
	workers int
	timeout time.Duration

	mu       sync.RWMutex
	entries  map[string]*grabberEntry
	order    []string

	onResult func(ActionKind, *FileData)
	onError  ErrorHandler

	stats *StatGroup

	checkpoint func()

	done chan struct{}
	wg   sync.WaitGroup
}

func newGrabberPool(log logger.Logger, queue *FIFO, workers int, timeout time.Duration, stats *StatGroup) *grabberPool {
	return &grabberPool{
		log:     log,
		queue:   queue,
		workers: workers,
		timeout: timeout,
		entries: make(map[string]*grabberEntry),
		stats:   stats,
		done:    make(chan struct{}),
	}
}

// Register adds a Grabber to the rotation, enabled by default and at normal
// (zero) priority. Registering a name that already exists replaces it.
func (p *grabberPool) Register(g Grabber) {
	p.mu.Lock()
	defer p.mu.Unlock()
	name := g.Name()
	if _, exists := p.entries[name]; !exists {
		p.order = append(p.order, name)
		sort.Strings(p.order)
	}
	p.entries[name] = newGrabberEntry(g)
}

// SetPriority implements the cfgGrabberPriority directive.
func (p *grabberPool) SetPriority(grabberID string, priority int8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if grabberID == "" {
		for _, e := range p.entries {
			e.priority = priority
		}
		return
	}
	if e, ok := p.entries[grabberID]; ok {
		e.priority = priority
	}
}

// SetEnabled implements the cfgGrabberState directive.
func (p *grabberPool) SetEnabled(grabberID string, enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[grabberID]; ok {
		e.enabled = enabled
	}
}

// GrabberInfo describes one registered plugin's runtime state, for the
// remote query surface (§4.12.2).
type GrabberInfo struct {
	Name     string
	Priority int8
	Enabled  bool
	Caps     []FileType
}

// Info lists every registered grabber in rotation order.
func (p *grabberPool) Info() []GrabberInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]GrabberInfo, 0, len(p.order))
	for _, name := range p.order {
		e := p.entries[name]
		out = append(out, GrabberInfo{Name: name, Priority: e.priority, Enabled: e.enabled, Caps: e.caps})
	}
	return out
}

func (p *grabberPool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *grabberPool) stop() {
	close(p.done)
	p.queue.Close()
	p.wg.Wait()
}

func (p *grabberPool) worker() {
	defer p.wg.Done()
	for {
		if p.checkpoint != nil {
			p.checkpoint()
		}
		kind, fd, ok := p.queue.Pop()
		if !ok {
			return
		}
		if kind == ActionNextLoop {
			// a loop marker carries no grabbing work; the dispatcher sends
			// files with downloads to the download queue, not here.
			continue
		}
		p.run(kind, fd)
		select {
		case <-p.done:
			return
		default:
		}
	}
}

func (p *grabberPool) run(kind ActionKind, fd *FileData) {
	if fd.Wait {
		// the previous stage's write must land before this grabber mutates
		// the same file's metadata (§4.1/§5's single-writer-per-file rule).
		<-fd.Sem
		fd.Wait = false
	}

	candidates := p.candidates(fd)
	if len(candidates) == 0 {
		fd.GrabbersExhausted = true
		if p.onResult != nil {
			p.onResult(kind, fd)
		}
		return
	}

	next := p.selectLocked(candidates)
	if next == nil {
		// skip (§4.9 step 2, "give up"): every capability-compatible,
		// not-yet-run plugin is held by another worker after both passes.
		// Requeue at the same step so another file can progress; this
		// file's rotation resumes on its next pop.
		p.queue.Push(fd.Priority, kind, fd)
		return
	}
	defer next.unlock()

	ctx := context.Background()
	var cancel context.CancelFunc
	if p.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if p.stats != nil {
		p.stats.StartTimer(next.g.Name())
	}
	res, err := next.g.Grab(ctx, fd.Path, append([]MetaPair(nil), fd.ParserMeta...))
	if p.stats != nil {
		p.stats.StopTimer(next.g.Name())
		p.stats.Incr(next.g.Name()+"_runs", 1)
	}
	fd.MarkGrabberDone(next.g.Name())
	if err != nil {
		if p.onError != nil {
			p.onError("grabber:"+next.g.Name(), fd.Path, err)
		}
		if p.onResult != nil {
			p.onResult(kind, fd)
		}
		return
	}

	for i := range res.Meta {
		if res.Meta[i].Priority == 0 {
			res.Meta[i].Priority = next.priority
		}
	}
	fd.SetGrabberMeta(next.g.Name(), res.Meta)
	fd.Downloads = append(fd.Downloads, res.Downloads...)
	if p.onResult != nil {
		p.onResult(kind, fd)
	}
}

// candidates lists every enabled, capability-compatible, not-yet-run
// grabber in rotation order; an empty result means the rotation is
// exhausted for fd (§4.9 step 4).
func (p *grabberPool) candidates(fd *FileData) []*grabberEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []*grabberEntry
	for _, name := range p.order {
		e := p.entries[name]
		if !e.enabled || fd.HasRunGrabber(name) {
			continue
		}
		if !e.acceptsType(fd.Type) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// selectLocked implements §4.9 step 2's two-pass plugin selection: a
// non-blocking pass over every candidate, then a single 200ms timed pass,
// before giving up and letting the caller skip the file for this round.
func (p *grabberPool) selectLocked(candidates []*grabberEntry) *grabberEntry {
	for _, e := range candidates {
		if e.tryLock() {
			return e
		}
	}
	for _, e := range candidates {
		if e.timedLock(p.timeout) {
			return e
		}
	}
	return nil
}
