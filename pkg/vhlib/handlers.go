package vhlib

import "github.com/vaulth/vhindex/pkg/logger"

// OnDemandEvent names a per-file milestone delivered to OnDemandHandler.
type OnDemandEvent int

const (
	EvtParsed OnDemandEvent = iota
	EvtGrabbed
	EvtEnded
)

func (e OnDemandEvent) String() string {
	switch e {
	case EvtGrabbed:
		return "grabbed"
	case EvtEnded:
		return "ended"
	default:
		return "parsed"
	}
}

// GlobalEvent names a scanner-loop milestone delivered to GlobalHandler.
type GlobalEvent int

const (
	EvtScannerBegin GlobalEvent = iota
	EvtScannerEnd
	EvtScannerAcks
	EvtScannerSleep
	EvtScannerExit
)

func (e GlobalEvent) String() string {
	switch e {
	case EvtScannerEnd:
		return "scanner_end"
	case EvtScannerAcks:
		return "scanner_acks"
	case EvtScannerSleep:
		return "scanner_sleep"
	case EvtScannerExit:
		return "scanner_exit"
	default:
		return "scanner_begin"
	}
}

// MetaEvent names which stage produced a metadata notification delivered to
// MetaHandler; one call is made per key/value pair (§4.4).
type MetaEvent int

const (
	EvtParserMeta MetaEvent = iota
	EvtGrabberMeta
)

// Metadata is the payload of one MetaHandler call.
type Metadata struct {
	Name  string
	Value string
	Lang  Language
	Group Group
}

// OnDemandHandler is invoked once per per-file milestone, serially, on the
// event handler's worker thread. grabberID is empty unless event is
// EvtGrabbed.
type OnDemandHandler func(path string, event OnDemandEvent, grabberID string)

// GlobalHandler is invoked once per scanner-loop milestone.
type GlobalHandler func(event GlobalEvent)

// MetaHandler is invoked once per extracted or grabbed metadata pair.
type MetaHandler func(event MetaEvent, grabberID string, path string, md Metadata)

// ErrorHandler is invoked for runtime errors the pipeline has already
// recovered from locally but that the embedder may want to observe.
type ErrorHandler func(stage string, path string, err error)

// Handlers bundles the callback surface an embedder may register with a
// Handle. Any left nil are replaced by no-ops in setDefault, mirroring the
// reference's pkg/warplib/handlers.go pattern; ErrorHandler is additionally
// wrapped so every error still reaches the log even if the embedder's own
// handler chooses to ignore it.
type Handlers struct {
	OnDemandHandler OnDemandHandler
	GlobalHandler   GlobalHandler
	MetaHandler     MetaHandler
	ErrorHandler    ErrorHandler
}

func (h *Handlers) setDefault(l logger.Logger) {
	if h.OnDemandHandler == nil {
		h.OnDemandHandler = func(string, OnDemandEvent, string) {}
	}
	if h.GlobalHandler == nil {
		h.GlobalHandler = func(GlobalEvent) {}
	}
	if h.MetaHandler == nil {
		h.MetaHandler = func(MetaEvent, string, string, Metadata) {}
	}
	userErrHandler := h.ErrorHandler
	h.ErrorHandler = func(stage, path string, err error) {
		l.Error("%s: %s: %s", stage, path, err.Error())
		if userErrHandler != nil {
			userErrHandler(stage, path, err)
		}
	}
}
