package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sir_venger/gridfiles/internal/app/resthttp"
	"github.com/sir_venger/gridfiles/internal/app/storagehttp"
	"github.com/sir_venger/gridfiles/internal/chunks"
	"github.com/sir_venger/gridfiles/internal/config"
	"github.com/sir_venger/gridfiles/internal/models"
)

// startNode поднимает узел хранения чанков поверх временного каталога.
func startNode(t *testing.T) (*httptest.Server, *chunks.Disk) {
	t.Helper()
	disk, err := chunks.NewDisk(t.TempDir(), true)
	require.NoError(t, err)

	node := httptest.NewServer(storagehttp.New(disk))
	t.Cleanup(node.Close)

	return node, disk
}

// startREST поднимает REST API по конфигурации так же, как cmd/rest.
func startREST(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	require.NoError(t, cfg.Validate())

	h, srv, err := resthttp.NewServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close(context.Background()) })

	rest := httptest.NewServer(h)
	t.Cleanup(rest.Close)

	return rest
}

func uploadFile(t *testing.T, base, filename string, payload []byte, metadata string) string {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if metadata != "" {
		require.NoError(t, mw.WriteField("metadata", metadata))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(base+"/files", mw.FormDataContentType(), body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res models.UploadResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.NotEmpty(t, res.ID)

	return res.ID
}

func downloadFile(t *testing.T, base, id string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(base + "/files/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, b
}

func listFiles(t *testing.T, base string) []models.FileInfo {
	t.Helper()
	resp, err := http.Get(base + "/files")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []models.FileInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return out
}

func deleteURL(t *testing.T, url string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	return resp.StatusCode
}
