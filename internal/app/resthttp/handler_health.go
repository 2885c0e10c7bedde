package resthttp

import (
	"net/http"
)

type healthResp struct {
	OK     bool   `json:"ok"`
	Driver string `json:"driver"`
	Error  string `json:"error,omitempty"`
}

// health сообщает, готово ли хранилище принимать запросы.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResp{OK: true}
	if s.Cfg != nil {
		resp.Driver = s.Cfg.StoreDriver
	}

	if err := s.Files.Ping(r.Context()); err != nil {
		resp.OK = false
		resp.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
