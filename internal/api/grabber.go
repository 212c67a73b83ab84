package api

import (
	"encoding/json"
	"errors"
	"net"

	"github.com/vaulth/vhindex/common"
	"github.com/vaulth/vhindex/internal/server"
)

// grabberListHandler lists every registered grabber and its runtime state
// (§4.9).
func (s *Api) grabberListHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	infos := s.handle.Grabbers()
	out := make([]common.GrabberInfo, len(infos))
	for i, g := range infos {
		out[i] = common.GrabberInfo{Name: g.Name, Priority: g.Priority, Enabled: g.Enabled}
	}
	return &common.GrabberListResponse{Grabbers: out}, nil
}

func (s *Api) grabberStateHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	var p common.GrabberStateParams
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if p.GrabberID == "" {
		return nil, errors.New("missing required param: grabber_id")
	}
	s.handle.SetGrabberEnabled(p.GrabberID, p.Enabled)
	return &common.EmptyResult{}, nil
}

func (s *Api) grabberPriorityHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	var p common.GrabberPriorityParams
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if p.GrabberID == "" {
		return nil, errors.New("missing required param: grabber_id")
	}
	s.handle.SetGrabberPriority(p.GrabberID, p.Priority)
	return &common.EmptyResult{}, nil
}
