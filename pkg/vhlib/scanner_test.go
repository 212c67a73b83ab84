package vhlib

import (
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/vaulth/vhindex/pkg/logger"
)

func newTestScanner(t *testing.T, roots []scanRootState, suffixes map[string]struct{}, fs afero.Fs, push func(string, int64, bool)) *scanner {
	t.Helper()
	if push == nil {
		push = func(string, int64, bool) {}
	}
	sc := newScanner(logger.NewNopLogger(), fs, roots, suffixes, time.Millisecond, 0, 1, push, nil)
	t.Cleanup(sc.stop)
	return sc
}

func TestScanner_WalkRoot_RecursiveFindsNestedMatches(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/music/a.mp3", []byte("x"), 0644)
	afero.WriteFile(fs, "/music/sub/b.mp3", []byte("x"), 0644)
	afero.WriteFile(fs, "/music/notes.txt", []byte("x"), 0644)

	suffixes := map[string]struct{}{"mp3": {}}
	sc := newTestScanner(t, nil, suffixes, fs, nil)
	sc.suffixes = suffixes

	pushed := sc.walkRoot(scanRootState{path: "/music", recursive: true})
	if pushed != 2 {
		t.Fatalf("pushed = %d, want 2", pushed)
	}
}

func TestScanner_WalkRoot_NonRecursiveSkipsSubdirs(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/music/a.mp3", []byte("x"), 0644)
	afero.WriteFile(fs, "/music/sub/b.mp3", []byte("x"), 0644)

	suffixes := map[string]struct{}{"mp3": {}}
	sc := newTestScanner(t, nil, suffixes, fs, nil)

	pushed := sc.walkRoot(scanRootState{path: "/music", recursive: false})
	if pushed != 1 {
		t.Fatalf("pushed = %d, want 1 (nested file must be skipped)", pushed)
	}
}

func TestScanner_WalkRoot_PushesPathMTimeAndOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/music/b.mp3", []byte("x"), 0644)
	afero.WriteFile(fs, "/music/a.mp3", []byte("x"), 0644)

	var got []string
	suffixes := map[string]struct{}{"mp3": {}}
	sc := newTestScanner(t, nil, suffixes, fs, func(path string, mtime int64, outOfPath bool) {
		got = append(got, path)
		if outOfPath {
			t.Error("walkRoot must never mark a file out-of-path")
		}
	})

	sc.walkRoot(scanRootState{path: "/music", recursive: true})
	if len(got) != 2 || got[0] != "/music/a.mp3" || got[1] != "/music/b.mp3" {
		t.Fatalf("got = %v, want sorted [a.mp3 b.mp3]", got)
	}
}

func TestScanner_WaitAcks_BlocksUntilExpectedCount(t *testing.T) {
	sc := newTestScanner(t, nil, nil, afero.NewMemMapFs(), nil)
	done := make(chan bool)
	go func() {
		done <- sc.waitAcks(2)
	}()

	select {
	case <-done:
		t.Fatal("waitAcks returned before enough Acknowledges arrived")
	case <-time.After(30 * time.Millisecond):
	}

	sc.Acknowledge()
	select {
	case <-done:
		t.Fatal("waitAcks returned after only one of two Acknowledges")
	case <-time.After(30 * time.Millisecond):
	}

	sc.Acknowledge()
	select {
	case ok := <-done:
		if !ok {
			t.Fatal("waitAcks should report true once fully drained")
		}
	case <-time.After(time.Second):
		t.Fatal("waitAcks never unblocked after the second Acknowledge")
	}
}

func TestScanner_WaitAcks_ZeroExpectedReturnsImmediately(t *testing.T) {
	sc := newTestScanner(t, nil, nil, afero.NewMemMapFs(), nil)
	if !sc.waitAcks(0) {
		t.Fatal("waitAcks(0) must return true immediately, with no Acknowledges required")
	}
}

func TestScanner_WaitAcks_StopUnblocksWaiters(t *testing.T) {
	sc := newTestScanner(t, nil, nil, afero.NewMemMapFs(), nil)
	done := make(chan bool)
	go func() {
		done <- sc.waitAcks(5)
	}()

	select {
	case <-done:
		t.Fatal("waitAcks returned before stop()")
	case <-time.After(30 * time.Millisecond):
	}

	sc.stop()
	select {
	case ok := <-done:
		if ok {
			t.Fatal("waitAcks must report false when the scanner stops before the barrier drains")
		}
	case <-time.After(time.Second):
		t.Fatal("waitAcks never unblocked after stop()")
	}
}

func TestScanner_Run_WaitsForAcksAfterEnd(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/music/a.mp3", []byte("x"), 0644)

	var mu sync.Mutex
	var events []GlobalEvent
	record := func(ev GlobalEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}

	var pushedCount int
	sc := newScanner(logger.NewNopLogger(), fs, []scanRootState{{path: "/music", recursive: true}},
		map[string]struct{}{"mp3": {}}, time.Millisecond, 0, 1,
		func(path string, mtime int64, outOfPath bool) { pushedCount++ }, record)
	t.Cleanup(sc.stop)

	runDone := make(chan struct{})
	go func() { sc.run(); close(runDone) }()

	waitForCondition(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) >= 2 && events[len(events)-1] == EvtScannerEnd
	})

	select {
	case <-runDone:
		t.Fatal("run must block after ScannerEnd until Acknowledges drain")
	case <-time.After(30 * time.Millisecond):
	}

	sc.Acknowledge()
	select {
	case <-runDone:
	case <-time.After(time.Second):
		t.Fatal("run never returned after the pushed file was acknowledged")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 3 || events[0] != EvtScannerBegin || events[1] != EvtScannerEnd || events[2] != EvtScannerAcks {
		t.Fatalf("events = %v, want [Begin End Acks]", events)
	}
}
