package storagehttp

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sir_venger/gridfiles/internal/chunks"
	"github.com/sir_venger/gridfiles/pkg/storageproto"
)

// sealFile помечает загрузку файла завершённой.
func (a *Server) sealFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	total, err := strconv.Atoi(r.Header.Get(storageproto.HeaderTotalChunks))
	if err != nil || total < 0 {
		http.Error(w, "invalid total chunks header", http.StatusBadRequest)
		return
	}

	err = a.disk.Seal(r.Context(), fileID, total)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, chunks.ErrChunkNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, chunks.ErrInvalidID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// deleteFile удаляет все чанки файла; повторное удаление не считается ошибкой.
func (a *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	if err := a.disk.DeleteChunks(r.Context(), chi.URLParam(r, "fileID")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
