package server

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/vaulth/vhindex/common"
	"github.com/vaulth/vhindex/pkg/vhlib"
)

// Custom JSON-RPC error codes for indexer operations.
const (
	codeInvalidParams = jrpc2.Code(-32602)
	codeQueryFailed    = jrpc2.Code(-32001)
)

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // Auth token (required -- empty means RPC disabled)
	ListenAll bool   // If true, bind to 0.0.0.0 instead of 127.0.0.1
	Version   string // Daemon version
	Commit    string // Git commit
	BuildType string // Build type
}

// RPCServer manages the JSON-RPC 2.0 bridge and method handlers binding the
// remote query/event surface (§4.12.2) onto a running vhlib.Handle.
type RPCServer struct {
	bridge    jhttp.Bridge
	secret    string
	version   string
	commit    string
	buildType string
	handle    *vhlib.Handle
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// NewRPCServer creates a new RPCServer with method handlers and HTTP bridge
// bound to h. h must already have had SetConfig/RegisterGrabber applied;
// Run may be called before or after the bridge starts serving requests.
func NewRPCServer(cfg *RPCConfig, h *vhlib.Handle) *RPCServer {
	rs := &RPCServer{
		secret:    cfg.Secret,
		version:   cfg.Version,
		commit:    cfg.Commit,
		buildType: cfg.BuildType,
		handle:    h,
	}

	methods := handler.Map{
		"system.getVersion":  handler.New(rs.systemGetVersion),
		"metalist":           handler.New(rs.metalist),
		"filelist":           handler.New(rs.filelist),
		"file":               handler.New(rs.file),
		"metadata.insert":    handler.New(rs.metadataInsert),
		"metadata.update":    handler.New(rs.metadataUpdate),
		"metadata.delete":    handler.New(rs.metadataDelete),
		"metadata.priority":  handler.New(rs.metadataPriority),
		"engage":             handler.New(rs.engage),
		"dump":               handler.New(rs.dump),
		"grabber.list":       handler.New(rs.grabberList),
		"grabber.setState":   handler.New(rs.grabberSetState),
		"grabber.setPriority": handler.New(rs.grabberSetPriority),
	}

	rs.bridge = jhttp.NewBridge(methods, nil)
	return rs
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*VersionResult, error) {
	return &VersionResult{
		Version:   rs.version,
		Commit:    rs.commit,
		BuildType: rs.buildType,
	}, nil
}

func (rs *RPCServer) metalist(_ context.Context, p *common.MetaListParams) (*common.MetaListResponse, error) {
	var filetype *vhlib.FileType
	if p.HasType {
		filetype = &p.Filetype
	}
	rows, err := rs.handle.Query().MetaList(p.Search, filetype, common.ToRestrictions(p.Restrictions))
	if err != nil {
		return nil, &jrpc2.Error{Code: codeQueryFailed, Message: err.Error()}
	}
	return &common.MetaListResponse{Rows: common.FromMetaRows(rows)}, nil
}

func (rs *RPCServer) filelist(_ context.Context, p *common.FileListParams) (*common.FileListResponse, error) {
	var filetype *vhlib.FileType
	if p.HasType {
		filetype = &p.Filetype
	}
	rows, err := rs.handle.Query().FileList(filetype, common.ToRestrictions(p.Restrictions))
	if err != nil {
		return nil, &jrpc2.Error{Code: codeQueryFailed, Message: err.Error()}
	}
	files := make([]common.FileRow, len(rows))
	for i, r := range rows {
		files[i] = common.FileRow{ID: r.ID, Path: r.Path, Type: r.Type}
	}
	return &common.FileListResponse{Files: files}, nil
}

func (rs *RPCServer) file(_ context.Context, p *common.FileParams) (*common.FileResponse, error) {
	if p.Path == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: path"}
	}
	rows, err := rs.handle.Query().File(p.Path, common.ToRestrictions(p.Restrictions))
	if err != nil {
		return nil, &jrpc2.Error{Code: codeQueryFailed, Message: err.Error()}
	}
	return &common.FileResponse{Rows: common.FromMetaRows(rows)}, nil
}

func (rs *RPCServer) metadataInsert(_ context.Context, p *common.MetadataInsertParams) (*common.EmptyResult, error) {
	if p.Path == "" || p.Key == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: path/key"}
	}
	if err := rs.handle.Query().MetadataInsert(p.Path, p.Key, p.Value, p.Lang, p.Group); err != nil {
		return nil, &jrpc2.Error{Code: codeQueryFailed, Message: err.Error()}
	}
	return &common.EmptyResult{}, nil
}

func (rs *RPCServer) metadataUpdate(_ context.Context, p *common.MetadataUpdateParams) (*common.EmptyResult, error) {
	if p.Path == "" || p.Key == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: path/key"}
	}
	if err := rs.handle.Query().MetadataUpdate(p.Path, p.Key, p.OldValue, p.NewValue, p.Lang); err != nil {
		return nil, &jrpc2.Error{Code: codeQueryFailed, Message: err.Error()}
	}
	return &common.EmptyResult{}, nil
}

func (rs *RPCServer) metadataDelete(_ context.Context, p *common.MetadataDeleteParams) (*common.EmptyResult, error) {
	if p.Path == "" || p.Key == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: path/key"}
	}
	if err := rs.handle.Query().MetadataDelete(p.Path, p.Key, p.Value); err != nil {
		return nil, &jrpc2.Error{Code: codeQueryFailed, Message: err.Error()}
	}
	return &common.EmptyResult{}, nil
}

func (rs *RPCServer) metadataPriority(_ context.Context, p *common.MetadataPriorityParams) (*common.EmptyResult, error) {
	if p.Path == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: path"}
	}
	if err := rs.handle.Query().MetadataPriority(p.Path, p.Key, p.Value, p.Priority); err != nil {
		return nil, &jrpc2.Error{Code: codeQueryFailed, Message: err.Error()}
	}
	return &common.EmptyResult{}, nil
}

// engage asks the pipeline to process a path immediately (§4.11).
func (rs *RPCServer) engage(_ context.Context, p *common.EngageParams) (*common.EmptyResult, error) {
	if p.Path == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: path"}
	}
	rs.handle.Engage(p.Path)
	return &common.EmptyResult{}, nil
}

// dump triggers an immediate stats dump (§4.12.2).
func (rs *RPCServer) dump(_ context.Context) (*common.EmptyResult, error) {
	rs.handle.Dump()
	return &common.EmptyResult{}, nil
}

func (rs *RPCServer) grabberList(_ context.Context) (*common.GrabberListResponse, error) {
	infos := rs.handle.Grabbers()
	out := make([]common.GrabberInfo, len(infos))
	for i, g := range infos {
		out[i] = common.GrabberInfo{Name: g.Name, Priority: g.Priority, Enabled: g.Enabled}
	}
	return &common.GrabberListResponse{Grabbers: out}, nil
}

func (rs *RPCServer) grabberSetState(_ context.Context, p *common.GrabberStateParams) (*common.EmptyResult, error) {
	if p.GrabberID == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: grabber_id"}
	}
	rs.handle.SetGrabberEnabled(p.GrabberID, p.Enabled)
	return &common.EmptyResult{}, nil
}

func (rs *RPCServer) grabberSetPriority(_ context.Context, p *common.GrabberPriorityParams) (*common.EmptyResult, error) {
	rs.handle.SetGrabberPriority(p.GrabberID, p.Priority)
	return &common.EmptyResult{}, nil
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
