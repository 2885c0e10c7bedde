package storagehttp

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// chunkRequest содержит идентификаторы чанка из URL.
type chunkRequest struct {
	fileID string
	idx    int
}

// requireChunkRequest валидирует path-параметры и возвращает заполненную структуру.
func requireChunkRequest(w http.ResponseWriter, r *http.Request) (*chunkRequest, bool) {
	req, err := newChunkRequest(r)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}

	return req, true
}

// newChunkRequest парсит идентификаторы из URL.
func newChunkRequest(r *http.Request) (*chunkRequest, error) {
	// fileID/idx берутся напрямую из path-параметров Chi.
	fileID := chi.URLParam(r, "fileID")
	idxStr := chi.URLParam(r, "idx")
	if fileID == "" || idxStr == "" {
		return nil, fmt.Errorf("invalid path")
	}

	// Индекс чанка приходит в десятичном виде, отрицательные значения запрещены.
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return nil, fmt.Errorf("invalid chunk index: %w", err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("invalid chunk index: must be non-negative")
	}

	return &chunkRequest{
		fileID: fileID,
		idx:    idx,
	}, nil
}
