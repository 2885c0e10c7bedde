package storagehttp

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/gridfiles/internal/chunks"
	"github.com/sir_venger/gridfiles/pkg/storageproto"
)

func newTestServer(t *testing.T) (*httptest.Server, *chunks.Disk) {
	t.Helper()
	disk, err := chunks.NewDisk(t.TempDir(), false)
	require.NoError(t, err)

	srv := httptest.NewServer(New(disk))
	t.Cleanup(srv.Close)

	return srv, disk
}

func doRequest(t *testing.T, method, url string, body []byte, hdr map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func checksum(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func TestChunkLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	payload := []byte("hello chunk")

	resp := doRequest(t, http.MethodPut, srv.URL+"/chunks/f1/0", payload, map[string]string{
		storageproto.HeaderChecksum: checksum(payload),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, http.MethodHead, srv.URL+"/chunks/f1/0", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, strconv.Itoa(len(payload)), resp.Header.Get(storageproto.HeaderChunkSize))
	assert.Equal(t, checksum(payload), resp.Header.Get(storageproto.HeaderChecksum))

	resp = doRequest(t, http.MethodGet, srv.URL+"/chunks/f1/0", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	resp = doRequest(t, http.MethodPost, srv.URL+"/chunks/f1", nil, map[string]string{
		storageproto.HeaderTotalChunks: "1",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, http.MethodDelete, srv.URL+"/chunks/f1", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/chunks/f1/0", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPutChunkValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPut, srv.URL+"/chunks/f1/0", []byte("abc"), map[string]string{
		storageproto.HeaderChecksum: checksum([]byte("other")),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doRequest(t, http.MethodPut, srv.URL+"/chunks/f1/-1", []byte("abc"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, http.MethodPut, srv.URL+"/chunks/bad.id/0", []byte("abc"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSealMissingChunks(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/chunks/f1", nil, map[string]string{
		storageproto.HeaderTotalChunks: "2",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, http.MethodPost, srv.URL+"/chunks/f1", nil, map[string]string{
		storageproto.HeaderTotalChunks: "many",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndGC(t *testing.T) {
	srv, _ := newTestServer(t)

	payload := []byte("12345")
	resp := doRequest(t, http.MethodPut, srv.URL+"/chunks/f1/0", payload, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var h storageproto.Health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.True(t, h.OK)
	assert.GreaterOrEqual(t, h.TotalBytes, int64(len(payload)))

	resp = doRequest(t, http.MethodPost, srv.URL+"/admin/gc", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// свежая загрузка моложе TTL и остаётся на месте
	resp = doRequest(t, http.MethodHead, srv.URL+"/chunks/f1/0", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
