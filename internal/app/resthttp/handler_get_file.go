package resthttp

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/sir_venger/gridfiles/pkg/httperrors"
)

// getFile стримит содержимое файла клиенту.
func (s *Server) getFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	info, rc, err := s.Files.Fetch(r.Context(), id)
	if err != nil {
		httperrors.Write(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Length, 10))
	if info.Filename != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": info.Filename}))
	}
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, rc)
	s.metrics.downloaded(r.Context(), n)
	if err != nil {
		// статус уже отправлен, остаётся только оборвать тело
		log.Ctx(r.Context()).Warn().Err(err).Str("file_id", id).Int64("sent", n).Msg("file stream interrupted")
	}
}

// getMetadata отдаёт метаданные файла; null, если их не прикладывали.
func (s *Server) getMetadata(w http.ResponseWriter, r *http.Request) {
	md, err := s.Files.Metadata(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, md)
}
