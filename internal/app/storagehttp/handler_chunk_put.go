package storagehttp

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sir_venger/gridfiles/internal/chunks"
	"github.com/sir_venger/gridfiles/pkg/storageproto"
)

// putChunk принимает PUT-запросы на запись чанка.
func (a *Server) putChunk(w http.ResponseWriter, r *http.Request) {
	req, ok := requireChunkRequest(w, r)
	if !ok {
		return
	}

	expSha := r.Header.Get(storageproto.HeaderChecksum)
	err := a.disk.PutChunk(r.Context(), req.fileID, req.idx, r.Body, r.ContentLength, expSha)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusCreated)
	case errors.Is(err, chunks.ErrChecksumMismatch):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, chunks.ErrSizeMismatch), errors.Is(err, chunks.ErrInvalidID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("file_id", req.fileID).Int("chunk", req.idx).Msg("put chunk failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
