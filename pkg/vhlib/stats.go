package vhlib

import (
	"sort"
	"sync"
	"time"
)

// StatGroup is one named collection of counters and timers accumulated under
// a single lock, following the reference's mutex-guarded-struct idiom for
// shared bookkeeping (see pkg/warplib/item.go's dAllocMu split). No
// third-party in-process counter/timer registry in the retrieval pack models
// a named-group counter/timer accumulator with a push-style dump callback
// (prometheus/client_golang is a pull-based exporter for a wholly different
// consumption model); this component is therefore hand-rolled, see DESIGN.md.
type StatGroup struct {
	mu       sync.Mutex
	counters map[string]uint64
	timers   map[string]time.Duration
	running  map[string]time.Time
	dump     func(name string, counters map[string]uint64, timers map[string]time.Duration)
}

// Stats is the registry of named StatGroups for one running handle.
type Stats struct {
	mu     sync.Mutex
	groups map[string]*StatGroup
}

// NewStats returns an empty stats registry.
func NewStats() *Stats {
	return &Stats{groups: make(map[string]*StatGroup)}
}

// Group returns the named group, creating it (with no dump callback) if it
// does not yet exist.
func (s *Stats) Group(name string) *StatGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[name]
	if !ok {
		g = &StatGroup{
			counters: make(map[string]uint64),
			timers:   make(map[string]time.Duration),
			running:  make(map[string]time.Time),
		}
		s.groups[name] = g
	}
	return g
}

// SetDump registers the callback Dump invokes for this group.
func (g *StatGroup) SetDump(fn func(name string, counters map[string]uint64, timers map[string]time.Duration)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dump = fn
}

// Incr adds delta to the named counter, creating it at delta if absent.
func (g *StatGroup) Incr(name string, delta uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters[name] += delta
}

// StartTimer records now as the start of the named timer. Calling it again
// before Stop overwrites the start instant (timers are not re-entrant).
func (g *StatGroup) StartTimer(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.running[name] = time.Now()
}

// StopTimer accumulates elapsed wall-clock since the matching StartTimer into
// the named timer. It is a no-op if StartTimer was never called.
func (g *StatGroup) StopTimer(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	start, ok := g.running[name]
	if !ok {
		return
	}
	delete(g.running, name)
	g.timers[name] += time.Since(start)
}

// Snapshot returns a copy of the group's counters and timers.
func (g *StatGroup) Snapshot() (map[string]uint64, map[string]time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := make(map[string]uint64, len(g.counters))
	for k, v := range g.counters {
		c[k] = v
	}
	t := make(map[string]time.Duration, len(g.timers))
	for k, v := range g.timers {
		t[k] = v
	}
	return c, t
}

// Names returns the sorted list of group names currently registered.
func (s *Stats) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.groups))
	for n := range s.groups {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dump invokes every group's registered dump callback with its current
// snapshot; groups with no callback registered are skipped.
func (s *Stats) Dump() {
	s.mu.Lock()
	groups := make(map[string]*StatGroup, len(s.groups))
	for k, v := range s.groups {
		groups[k] = v
	}
	s.mu.Unlock()

	names := make([]string, 0, len(groups))
	for n := range groups {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		g := groups[name]
		g.mu.Lock()
		dump := g.dump
		g.mu.Unlock()
		if dump == nil {
			continue
		}
		c, t := g.Snapshot()
		dump(name, c, t)
	}
}
