package api

import (
	"encoding/json"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/vaulth/vhindex/common"
	"github.com/vaulth/vhindex/internal/server"
	"github.com/vaulth/vhindex/pkg/logger"
	"github.com/vaulth/vhindex/pkg/vhlib"
)

func newTestApi(t *testing.T) *Api {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "vhindex.db")
	h := vhlib.NewHandle(logger.NewStandardLogger(log.New(io.Discard, "", 0)), dbPath)
	if err := h.SetConfig(vhlib.ScannerPath(t.TempDir(), false), vhlib.ScannerSuffix(".flac")); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	// Run scans in a loop until Uninit, so it must run in the background.
	runErr := make(chan error, 1)
	go func() { runErr <- h.Run() }()
	t.Cleanup(func() {
		h.Uninit()
		<-runErr
	})
	// Give Run time to finish wiring components before tests dispatch to them.
	time.Sleep(20 * time.Millisecond)

	api, err := NewApi(log.New(io.Discard, "", 0), h, nil, "v-test", "deadbeef", "dev")
	if err != nil {
		t.Fatalf("NewApi: %v", err)
	}
	return api
}

func TestRegisterHandlersRegistersQueryAndGrabberMethods(t *testing.T) {
	api := newTestApi(t)
	srv := server.NewServer(nil, 0)
	api.RegisterHandlers(srv)

	for _, method := range []common.UpdateType{
		common.UPDATE_METALIST, common.UPDATE_FILELIST, common.UPDATE_FILE,
		common.UPDATE_METADATA_INSERT, common.UPDATE_ENGAGE, common.UPDATE_DUMP,
		common.UPDATE_GRABBER_LIST, common.UPDATE_VERSION,
	} {
		if !srv.HasHandler(string(method)) {
			t.Errorf("expected handler registered for %s", method)
		}
	}
}

func TestVersionHandler(t *testing.T) {
	api := newTestApi(t)
	res, err := api.versionHandler(nil, nil, nil)
	if err != nil {
		t.Fatalf("versionHandler: %v", err)
	}
	v, ok := res.(*common.VersionResponse)
	if !ok || v.Version != "v-test" {
		t.Fatalf("unexpected version response: %+v", res)
	}
}

func TestEngageHandlerMissingPath(t *testing.T) {
	api := newTestApi(t)
	if _, err := api.engageHandler(nil, nil, json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestMetadataInsertHandlerMissingKey(t *testing.T) {
	api := newTestApi(t)
	body, _ := json.Marshal(common.MetadataInsertParams{Path: "/music/a.flac"})
	if _, err := api.metadataInsertHandler(nil, nil, body); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestGrabberListHandlerEmpty(t *testing.T) {
	api := newTestApi(t)
	res, err := api.grabberListHandler(nil, nil, nil)
	if err != nil {
		t.Fatalf("grabberListHandler: %v", err)
	}
	list, ok := res.(*common.GrabberListResponse)
	if !ok || len(list.Grabbers) != 0 {
		t.Fatalf("expected empty grabber list, got %+v", res)
	}
}

func TestGrabberStateHandlerMissingID(t *testing.T) {
	api := newTestApi(t)
	if _, err := api.grabberStateHandler(nil, nil, json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected error for missing grabber_id")
	}
}
