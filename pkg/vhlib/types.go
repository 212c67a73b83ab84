package vhlib

import (
	"sync"
	"time"

	"github.com/vaulth/vhindex/pkg/vhtypes"
)

// Re-exported from vhtypes so callers of vhlib rarely need to import the
// shared-enum package by name.
type (
	FileType    = vhtypes.FileType
	Group       = vhtypes.Group
	Language    = vhtypes.Language
	Interrupted = vhtypes.Interrupted
)

const (
	TypeNull     = vhtypes.TypeNull
	TypeAudio    = vhtypes.TypeAudio
	TypeVideo    = vhtypes.TypeVideo
	TypeImage    = vhtypes.TypeImage
	TypePlaylist = vhtypes.TypePlaylist

	GroupMiscellaneous  = vhtypes.GroupMiscellaneous
	GroupClassification = vhtypes.GroupClassification
	GroupCommercial     = vhtypes.GroupCommercial
	GroupContact        = vhtypes.GroupContact
	GroupEntities       = vhtypes.GroupEntities
	GroupIdentifier     = vhtypes.GroupIdentifier
	GroupLegal          = vhtypes.GroupLegal
	GroupMusical        = vhtypes.GroupMusical
	GroupOrganisational = vhtypes.GroupOrganisational
	GroupPersonal       = vhtypes.GroupPersonal
	GroupSpacial        = vhtypes.GroupSpacial
	GroupTechnical      = vhtypes.GroupTechnical
	GroupTemporal       = vhtypes.GroupTemporal
	GroupTitles         = vhtypes.GroupTitles

	LangUndefined = vhtypes.LangUndefined
	LangEN        = vhtypes.LangEN
	LangFR        = vhtypes.LangFR
	LangDE        = vhtypes.LangDE
	LangES        = vhtypes.LangES
	LangIT        = vhtypes.LangIT

	InterruptedDone      = vhtypes.InterruptedDone
	InterruptedStarted   = vhtypes.InterruptedStarted
	InterruptedInFlight  = vhtypes.InterruptedInFlight
)

// Step names the pipeline stage a FileData is currently targeting.
type Step int

const (
	StepParsing Step = iota
	StepGrabbing
	StepDownloading
	StepEnding
)

func (s Step) String() string {
	switch s {
	case StepGrabbing:
		return "grabbing"
	case StepDownloading:
		return "downloading"
	case StepEnding:
		return "ending"
	default:
		return "parsing"
	}
}

// ActionKind tags the payload carried through a Priority FIFO (§4.1) or a
// stage's private inbox.
type ActionKind int

const (
	ActionNewFile ActionKind = iota
	ActionInsertP
	ActionUpdateP
	ActionInsertG
	ActionUpdateG
	ActionEnd
	ActionNextLoop
	ActionAcknowledge
	ActionKillThread
	ActionPauseThread
)

// DownloadItem is one pending artwork/side-car fetch for a file.
type DownloadItem struct {
	URL  string
	Kind string // "cover", "thumbnail", "fan-art", "default"
	Name string
}

// MetaPair is one extracted or grabbed metadata key/value, tagged with its
// group and language, awaiting persistence.
type MetaPair struct {
	Key      string
	Value    string
	Group    Group
	Language Language
	Priority int8
}

// FileData is the in-memory record that travels between pipeline stages.
// It is exclusively owned by whichever queue currently holds it; once popped
// by a worker, ownership transfers to that worker until it is re-enqueued or
// freed. See GLOSSARY.
type FileData struct {
	Path     string
	MTime    int64
	OutOfPath bool
	Type     FileType

	Step     Step
	Priority Priority

	// OnDemand is true for files created or elevated by the on-demand
	// component; such files never produce Acknowledge actions.
	OnDemand bool

	// Wait is set by the Dispatcher when advancing to Grabbing right after an
	// Insert/UpdateG was forwarded to the DB-Manager; the grabber pool worker
	// must block on Sem until it is posted, guaranteeing the previous
	// grabber's metadata is durable before the next grabber mutates the file.
	Wait bool
	Sem  chan struct{}

	mu sync.Mutex

	ParserMeta []MetaPair

	// GrabberMeta accumulates the metadata produced by the most recently run
	// grabber; the DB-Manager drains and persists it on InsertG/UpdateG.
	GrabberMeta []MetaPair
	// GrabberDone lists grabber names that have already run for this file in
	// the current pass (restored from the store on interrupted recovery, S7).
	GrabberDone []string
	// CurrentGrabber is the plugin name the pool most recently ran.
	CurrentGrabber string
	// GrabbersExhausted is set by the grabber pool once every enabled,
	// capable grabber has already run for this file, telling the Dispatcher
	// to stop re-queueing it onto the grabber queue.
	GrabbersExhausted bool

	Downloads []DownloadItem

	createdAt time.Time
}

// NewFileData allocates a fresh FileData at step Parsing with the given
// path, mtime and priority; callers set OutOfPath before enqueueing it.
func NewFileData(path string, mtime int64, prio Priority) *FileData {
	return &FileData{
		Path:      path,
		MTime:     mtime,
		Step:      StepParsing,
		Priority:  prio,
		Sem:       make(chan struct{}, 1),
		createdAt: time.Now(),
	}
}

// TakeParserMeta atomically removes and returns the accumulated parser
// metadata, leaving the slice empty for the next stage pass.
func (f *FileData) TakeParserMeta() []MetaPair {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.ParserMeta
	f.ParserMeta = nil
	return m
}

// SetParserMeta stores metadata produced by the Parser.
func (f *FileData) SetParserMeta(m []MetaPair) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ParserMeta = m
}

// TakeGrabberMeta atomically removes and returns the metadata produced by the
// most recent grabber invocation.
func (f *FileData) TakeGrabberMeta() []MetaPair {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.GrabberMeta
	f.GrabberMeta = nil
	return m
}

// SetGrabberMeta stores metadata produced by the grabber that just ran.
func (f *FileData) SetGrabberMeta(name string, m []MetaPair) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CurrentGrabber = name
	f.GrabberMeta = m
}

// MarkGrabberDone appends name to the done-list under lock, guarding against
// concurrent reads from the pool's selector.
func (f *FileData) MarkGrabberDone(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GrabberDone = append(f.GrabberDone, name)
}

// HasRunGrabber reports whether name is already in the done-list.
func (f *FileData) HasRunGrabber(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.GrabberDone {
		if n == name {
			return true
		}
	}
	return false
}

// Release posts the file's semaphore exactly once without blocking,
// unblocking a grabber worker waiting because Wait was set.
func (f *FileData) Release() {
	select {
	case f.Sem <- struct{}{}:
	default:
	}
}
