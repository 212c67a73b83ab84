// Package api registers the Unix-socket/TCP daemon handlers over vhlib.Handle:
// the query surface (§6), scriptgrabber extension management (§4.9), and
// daemon info. It mirrors internal/server/rpc_methods.go's jrpc2 surface but
// speaks the daemon's own NUL-terminated JSON wire protocol instead.
package api

import (
	"log"

	"github.com/vaulth/vhindex/common"
	"github.com/vaulth/vhindex/internal/extl"
	"github.com/vaulth/vhindex/internal/server"
	"github.com/vaulth/vhindex/pkg/vhlib"
)

// Api coordinates request handling between the server and the index
// pipeline. It encapsulates the running Handle and the scriptgrabber
// extension engine required to process query and extension requests.
type Api struct {
	log       *log.Logger
	handle    *vhlib.Handle
	elEngine  *extl.Engine
	version   string
	commit    string
	buildType string
}

// NewApi creates a new Api instance with the provided dependencies.
// handle must already have had SetConfig/Run called. elEngine may be nil if
// scriptgrabber extensions are not configured.
func NewApi(l *log.Logger, h *vhlib.Handle, elEngine *extl.Engine, version, commit, buildType string) (*Api, error) {
	return &Api{
		log:       l,
		handle:    h,
		elEngine:  elEngine,
		version:   version,
		commit:    commit,
		buildType: buildType,
	}, nil
}

// RegisterHandlers registers all API handlers with the provided server.
func (s *Api) RegisterHandlers(srv *server.Server) {
	// query API methods (§6)
	srv.RegisterHandler(string(common.UPDATE_METALIST), s.metalistHandler)
	srv.RegisterHandler(string(common.UPDATE_FILELIST), s.filelistHandler)
	srv.RegisterHandler(string(common.UPDATE_FILE), s.fileHandler)
	srv.RegisterHandler(string(common.UPDATE_METADATA_INSERT), s.metadataInsertHandler)
	srv.RegisterHandler(string(common.UPDATE_METADATA_UPDATE), s.metadataUpdateHandler)
	srv.RegisterHandler(string(common.UPDATE_METADATA_DELETE), s.metadataDeleteHandler)
	srv.RegisterHandler(string(common.UPDATE_METADATA_PRIORITY), s.metadataPriorityHandler)
	srv.RegisterHandler(string(common.UPDATE_ENGAGE), s.engageHandler)
	srv.RegisterHandler(string(common.UPDATE_DUMP), s.dumpHandler)

	// grabber control methods (§4.9)
	srv.RegisterHandler(string(common.UPDATE_GRABBER_LIST), s.grabberListHandler)
	srv.RegisterHandler(string(common.UPDATE_GRABBER_STATE), s.grabberStateHandler)
	srv.RegisterHandler(string(common.UPDATE_GRABBER_PRIORITY), s.grabberPriorityHandler)

	// extension API methods
	if s.elEngine != nil {
		srv.RegisterHandler(string(common.UPDATE_ADD_EXT), s.addExtHandler)
		srv.RegisterHandler(string(common.UPDATE_GET_EXT), s.getExtHandler)
		srv.RegisterHandler(string(common.UPDATE_LIST_EXT), s.listExtHandler)
		srv.RegisterHandler(string(common.UPDATE_DELETE_EXT), s.deleteExtHandler)
		srv.RegisterHandler(string(common.UPDATE_ACTIVATE_EXT), s.activateExtHandler)
		srv.RegisterHandler(string(common.UPDATE_DEACTIVATE_EXT), s.deactivateExtHandler)
	}

	// daemon info methods
	srv.RegisterHandler(string(common.UPDATE_VERSION), s.versionHandler)
}

// Close releases resources held by the Api: the scriptgrabber engine, if
// configured, and the underlying Handle.
func (s *Api) Close() error {
	if s.elEngine != nil {
		if err := s.elEngine.Close(); err != nil {
			return err
		}
	}
	return s.handle.Uninit()
}
