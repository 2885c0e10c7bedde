package integration

import (
	"bytes"
	"crypto/sha256"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/gridfiles/internal/config"
)

func Test_UploadDownload_RemoteNode(t *testing.T) {
	node, _ := startNode(t)

	cfg := config.Default()
	cfg.ChunkStore = node.URL
	cfg.ChunkSize = 64 * 1024
	rest := startREST(t, cfg)

	payload := bytes.Repeat([]byte{0xA1, 0xB2, 0xC3, 0xD4}, 1<<18) // ~1MB
	id := uploadFile(t, rest.URL, "blob.bin", payload, `{"kind":"test"}`)

	status, got := downloadFile(t, rest.URL, id)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, sha256.Sum256(payload), sha256.Sum256(got))

	files := listFiles(t, rest.URL)
	require.Len(t, files, 1)
	assert.EqualValues(t, len(payload), files[0].Length)
	assert.Equal(t, "test", files[0].Metadata["kind"])

	assert.Equal(t, http.StatusNoContent, deleteURL(t, rest.URL+"/files/"+id))
	status, _ = downloadFile(t, rest.URL, id)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, http.StatusNoContent, deleteURL(t, rest.URL+"/files/"+id))
}

func Test_UploadDownload_LocalDisk(t *testing.T) {
	cfg := config.Default()
	cfg.ChunkStore = "file://" + t.TempDir()
	cfg.CompressChunks = true
	rest := startREST(t, cfg)

	ids := make(map[string][]byte)
	for i, size := range []int{0, 1, 255 * 1024, 255*1024 + 1, 3 * 255 * 1024} {
		payload := bytes.Repeat([]byte{byte(i + 1)}, size)
		ids[uploadFile(t, rest.URL, "f.bin", payload, "")] = payload
	}

	for id, want := range ids {
		status, got := downloadFile(t, rest.URL, id)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, want, got)
	}

	assert.Len(t, listFiles(t, rest.URL), len(ids))
	assert.Equal(t, http.StatusNoContent, deleteURL(t, rest.URL+"/files"))
	assert.Empty(t, listFiles(t, rest.URL))
}
