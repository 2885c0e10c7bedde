package storagehttp

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/sir_venger/gridfiles/internal/chunks"
	"github.com/sir_venger/gridfiles/pkg/storageproto"
)

// getChunk обслуживает GET-запросы, возвращая содержимое чанка.
func (a *Server) getChunk(w http.ResponseWriter, r *http.Request) {
	req, ok := requireChunkRequest(w, r)
	if !ok {
		return
	}

	size, sha, err := a.disk.ChunkInfo(req.fileID, req.idx)
	if err != nil {
		writeChunkError(w, r, err)
		return
	}

	rc, err := a.disk.GetChunk(r.Context(), req.fileID, req.idx)
	if err != nil {
		writeChunkError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set(storageproto.HeaderChunkSize, strconv.FormatInt(size, 10))
	w.Header().Set(storageproto.HeaderChecksum, sha)
	w.Header().Set("Content-Type", "application/octet-stream")

	if _, err = io.Copy(w, rc); err != nil {
		// заголовки уже отправлены, клиент увидит оборванное тело
		log.Ctx(r.Context()).Warn().Err(err).Str("file_id", req.fileID).Int("chunk", req.idx).Msg("chunk stream interrupted")
	}
}

// inspectChunk отвечает на HEAD-запросы метаданными по чанку.
func (a *Server) inspectChunk(w http.ResponseWriter, r *http.Request) {
	req, ok := requireChunkRequest(w, r)
	if !ok {
		return
	}

	size, sha, err := a.disk.ChunkInfo(req.fileID, req.idx)
	if err != nil {
		writeChunkError(w, r, err)
		return
	}

	w.Header().Set(storageproto.HeaderChunkSize, strconv.FormatInt(size, 10))
	w.Header().Set(storageproto.HeaderChecksum, sha)
	w.WriteHeader(http.StatusOK)
}

func writeChunkError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, chunks.ErrChunkNotFound) {
		http.NotFound(w, r)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
