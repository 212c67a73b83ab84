package api

import (
	"encoding/json"
	"errors"
	"net"

	"github.com/vaulth/vhindex/common"
	"github.com/vaulth/vhindex/internal/server"
)

func (s *Api) addExtHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	var m common.LoadExtensionParams
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	if m.Path == "" {
		return nil, errors.New("extension path is required")
	}
	ext, err := s.elEngine.AddModule(m.Path)
	if err != nil {
		return nil, err
	}
	return &common.ExtensionInfo{
		ExtensionId: ext.ModuleId,
		Name:        ext.Name,
		Version:     ext.Version,
		Description: ext.Description,
		Matches:     ext.Matches,
	}, nil
}
