package resthttp

import (
	"net/http"

	"github.com/sir_venger/gridfiles/pkg/httperrors"
)

// listFiles отдаёт все файлы; на пустой список тоже 200.
func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.Files.ListAll(r.Context())
	if err != nil {
		httperrors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, files)
}
