package resthttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sir_venger/gridfiles/pkg/httperrors"
)

// deleteFile удаляет файл; отсутствующий id тоже даёт 204.
func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.Files.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httperrors.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteFiles(w http.ResponseWriter, r *http.Request) {
	if err := s.Files.DeleteAll(r.Context()); err != nil {
		httperrors.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
