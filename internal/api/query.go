package api

import (
	"encoding/json"
	"errors"
	"net"

	"github.com/vaulth/vhindex/common"
	"github.com/vaulth/vhindex/internal/server"
	"github.com/vaulth/vhindex/pkg/vhlib"
)

func (s *Api) metalistHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	var p common.MetaListParams
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	var filetype *vhlib.FileType
	if p.HasType {
		filetype = &p.Filetype
	}
	rows, err := s.handle.Query().MetaList(p.Search, filetype, common.ToRestrictions(p.Restrictions))
	if err != nil {
		return nil, err
	}
	return &common.MetaListResponse{Rows: common.FromMetaRows(rows)}, nil
}

func (s *Api) filelistHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	var p common.FileListParams
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	var filetype *vhlib.FileType
	if p.HasType {
		filetype = &p.Filetype
	}
	rows, err := s.handle.Query().FileList(filetype, common.ToRestrictions(p.Restrictions))
	if err != nil {
		return nil, err
	}
	files := make([]common.FileRow, len(rows))
	for i, r := range rows {
		files[i] = common.FileRow{ID: r.ID, Path: r.Path, Type: r.Type}
	}
	return &common.FileListResponse{Files: files}, nil
}

func (s *Api) fileHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	var p common.FileParams
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if p.Path == "" {
		return nil, errors.New("missing required param: path")
	}
	rows, err := s.handle.Query().File(p.Path, common.ToRestrictions(p.Restrictions))
	if err != nil {
		return nil, err
	}
	return &common.FileResponse{Rows: common.FromMetaRows(rows)}, nil
}

func (s *Api) metadataInsertHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	var p common.MetadataInsertParams
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if p.Path == "" || p.Key == "" {
		return nil, errors.New("missing required param: path/key")
	}
	if err := s.handle.Query().MetadataInsert(p.Path, p.Key, p.Value, p.Lang, p.Group); err != nil {
		return nil, err
	}
	return &common.EmptyResult{}, nil
}

func (s *Api) metadataUpdateHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	var p common.MetadataUpdateParams
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if p.Path == "" || p.Key == "" {
		return nil, errors.New("missing required param: path/key")
	}
	if err := s.handle.Query().MetadataUpdate(p.Path, p.Key, p.OldValue, p.NewValue, p.Lang); err != nil {
		return nil, err
	}
	return &common.EmptyResult{}, nil
}

func (s *Api) metadataDeleteHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	var p common.MetadataDeleteParams
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if p.Path == "" || p.Key == "" {
		return nil, errors.New("missing required param: path/key")
	}
	if err := s.handle.Query().MetadataDelete(p.Path, p.Key, p.Value); err != nil {
		return nil, err
	}
	return &common.EmptyResult{}, nil
}

func (s *Api) metadataPriorityHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	var p common.MetadataPriorityParams
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if p.Path == "" {
		return nil, errors.New("missing required param: path")
	}
	if err := s.handle.Query().MetadataPriority(p.Path, p.Key, p.Value, p.Priority); err != nil {
		return nil, err
	}
	return &common.EmptyResult{}, nil
}

// engageHandler asks the pipeline to process a path immediately (§4.11).
func (s *Api) engageHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	var p common.EngageParams
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if p.Path == "" {
		return nil, errors.New("missing required param: path")
	}
	s.handle.Engage(p.Path)
	return &common.EmptyResult{}, nil
}

// dumpHandler triggers an immediate stats dump (§4.12.2).
func (s *Api) dumpHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	s.handle.Dump()
	return &common.EmptyResult{}, nil
}
