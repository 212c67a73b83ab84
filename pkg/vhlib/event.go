package vhlib

import "sync"

// eventKind tags a queued notification for the event handler's single
// worker thread (§4.4).
type eventKind int

const (
	eventOnDemand eventKind = iota
	eventGlobal
	eventMeta
)

type eventMsg struct {
	kind eventKind

	path      string
	odEvent   OnDemandEvent
	grabberID string

	glEvent GlobalEvent

	mdEvent MetaEvent
	md      Metadata

	// keys is populated alongside an eventOnDemand message when the embedder
	// asked to be able to enumerate the triggering metadata from inside its
	// own callback (see currentKeys below).
	keys []Metadata
}

// eventHandler serialises delivery of all three callback kinds onto one
// worker goroutine, so an embedder's handler implementation never needs its
// own synchronisation. It mirrors the reference's handler-wrapping style
// (pkg/warplib/handlers.go) generalised to a dedicated worker instead of
// direct synchronous calls.
type eventHandler struct {
	h     *Handlers
	inbox chan eventMsg
	done  chan struct{}
	wg    sync.WaitGroup

	keysMu      sync.Mutex
	keysLocked  bool
	currentKeys []Metadata
}

func newEventHandler(h *Handlers) *eventHandler {
	return &eventHandler{
		h:     h,
		inbox: make(chan eventMsg, 256),
		done:  make(chan struct{}),
	}
}

func (e *eventHandler) start() {
	e.wg.Add(1)
	go e.loop()
}

func (e *eventHandler) loop() {
	defer e.wg.Done()
	for {
		select {
		case msg := <-e.inbox:
			e.deliver(msg)
		case <-e.done:
			// drain anything already queued before exiting, so a KillThread
			// right after a burst of End actions doesn't drop callbacks.
			for {
				select {
				case msg := <-e.inbox:
					e.deliver(msg)
					continue
				default:
				}
				return
			}
		}
	}
}

func (e *eventHandler) deliver(msg eventMsg) {
	switch msg.kind {
	case eventOnDemand:
		e.keysMu.Lock()
		e.keysLocked = true
		e.currentKeys = msg.keys
		e.keysMu.Unlock()

		e.h.OnDemandHandler(msg.path, msg.odEvent, msg.grabberID)

		e.keysMu.Lock()
		e.keysLocked = false
		e.currentKeys = nil
		e.keysMu.Unlock()
	case eventGlobal:
		e.h.GlobalHandler(msg.glEvent)
	case eventMeta:
		e.h.MetaHandler(msg.mdEvent, msg.grabberID, msg.path, msg.md)
	}
}

func (e *eventHandler) postOnDemand(path string, evt OnDemandEvent, grabberID string, keys []Metadata) {
	e.inbox <- eventMsg{kind: eventOnDemand, path: path, odEvent: evt, grabberID: grabberID, keys: keys}
}

func (e *eventHandler) postGlobal(evt GlobalEvent) {
	e.inbox <- eventMsg{kind: eventGlobal, glEvent: evt}
}

func (e *eventHandler) postMeta(evt MetaEvent, grabberID, path string, md Metadata) {
	e.inbox <- eventMsg{kind: eventMeta, mdEvent: evt, grabberID: grabberID, path: path, md: md}
}

// CurrentOnDemandKeys returns the metadata keys associated with the
// on-demand event currently being delivered, or nil when no on-demand
// delivery is in progress (non-blocking acquisition). It does not tell the
// worker goroutine apart from others: a call from another goroutine made
// while a delivery is in progress also gets the keys.
func (e *eventHandler) CurrentOnDemandKeys() []Metadata {
	if !e.keysMu.TryLock() {
		return nil
	}
	defer e.keysMu.Unlock()
	if !e.keysLocked {
		return nil
	}
	return e.currentKeys
}

func (e *eventHandler) stop() {
	close(e.done)
	e.wg.Wait()
}
