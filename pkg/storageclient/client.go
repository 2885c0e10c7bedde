package storageclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sir_venger/gridfiles/internal/chunks"
	"github.com/sir_venger/gridfiles/pkg/storageproto"
)

var healthHTTPClient = &http.Client{Timeout: 2 * time.Second}

// Client хранит чанки на удалённом узле хранения (cmd/storage).
type Client struct {
	base string
	c    *http.Client
}

var _ chunks.Store = (*Client)(nil)

// New создаёт HTTP-клиент узла хранения с адресом baseURL.
func New(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		c:    &http.Client{},
	}
}

// PutChunk загружает чанк файла на узел.
func (h *Client) PutChunk(ctx context.Context, fileID string, n int, r io.Reader, size int64, sha string) error {
	u := fmt.Sprintf(storageproto.ChunkPathFormat, h.base, fileID, n)
	body := newTransferReader(r, "upload", fileID, n)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, body)
	if err != nil {
		return err
	}
	if size >= 0 {
		req.ContentLength = size
	}
	if sha != "" {
		req.Header.Set(storageproto.HeaderChecksum, sha)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := h.c.Do(req)
	if err != nil {
		body.finish(err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		err = statusError(http.MethodPut, resp, n)
		body.finish(err)
		return err
	}
	body.finish(nil)

	return nil
}

// GetChunk скачивает чанк файла и возвращает поток с телом.
func (h *Client) GetChunk(ctx context.Context, fileID string, n int) (io.ReadCloser, error) {
	u := fmt.Sprintf(storageproto.ChunkPathFormat, h.base, fileID, n)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(http.MethodGet, resp, n)
	}

	return transferReadCloser{
		transferReader: newTransferReader(resp.Body, "download", fileID, n),
		closer:         resp.Body,
	}, nil
}

// Seal сообщает узлу, что все чанки файла загружены.
func (h *Client) Seal(ctx context.Context, fileID string, total int) error {
	u := fmt.Sprintf(storageproto.FilePathFormat, h.base, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set(storageproto.HeaderTotalChunks, strconv.Itoa(total))

	return h.do(req)
}

// DeleteChunks удаляет все чанки файла на узле.
func (h *Client) DeleteChunks(ctx context.Context, fileID string) error {
	u := fmt.Sprintf(storageproto.FilePathFormat, h.base, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}

	return h.do(req)
}

// Ping опрашивает /health узла.
func (h *Client) Ping(ctx context.Context) error {
	info, err := h.Health(ctx)
	if err != nil {
		return err
	}
	if !info.OK {
		return fmt.Errorf("storage %s is not ready", h.base)
	}

	return nil
}

// Health возвращает агрегированную статистику узла.
func (h *Client) Health(ctx context.Context) (payload storageproto.Health, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(storageproto.HealthPathFormat, h.base), nil)
	if err != nil {
		return storageproto.Health{}, err
	}

	resp, err := healthHTTPClient.Do(req)
	if err != nil {
		return storageproto.Health{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return storageproto.Health{}, fmt.Errorf("health check failed: %s", resp.Status)
	}

	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return storageproto.Health{}, err
	}

	return payload, nil
}

func (h *Client) do(req *http.Request) error {
	resp, err := h.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(req.Method, resp, -1)
	}

	return nil
}

func statusError(method string, resp *http.Response, n int) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := strings.TrimSpace(string(msg))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("storage %s chunk %d: %w", method, n, chunks.ErrChunkNotFound)
	case http.StatusConflict:
		return fmt.Errorf("storage %s chunk %d: %w", method, n, chunks.ErrChecksumMismatch)
	}

	return fmt.Errorf("storage %s failed: %s: %s", method, resp.Status, detail)
}
