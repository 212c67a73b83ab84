package api

import (
	"encoding/json"
	"errors"
	"net"

	"github.com/vaulth/vhindex/common"
	"github.com/vaulth/vhindex/internal/server"
)

func (s *Api) deleteExtHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	var m common.InputExtension
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	if m.ExtensionId == "" {
		return nil, errors.New("extension id is required")
	}
	extName, err := s.elEngine.DeleteModule(m.ExtensionId)
	if err != nil {
		return nil, err
	}
	return &common.ExtensionName{Name: extName}, nil
}
