package api

import (
	"encoding/json"
	"net"

	"github.com/vaulth/vhindex/common"
	"github.com/vaulth/vhindex/internal/server"
)

func (s *Api) listExtHandler(conn net.Conn, pool *server.Pool, body json.RawMessage) (any, error) {
	var m common.ListExtensionsParams
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	return s.elEngine.ListModules(m.All), nil
}
