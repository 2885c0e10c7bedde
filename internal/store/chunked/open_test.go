package chunked

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/gridfiles/internal/app/storagehttp"
	"github.com/sir_venger/gridfiles/internal/chunks"
	"github.com/sir_venger/gridfiles/internal/config"
)

func TestOpen_LocalDisk(t *testing.T) {
	cfg := config.Default()
	cfg.ChunkStore = "file://" + t.TempDir()
	cfg.CompressChunks = true

	e, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer e.Close(context.Background())

	require.NoError(t, e.Ping(context.Background()))
	id, err := e.Upload(context.Background(), "a", bytes.NewReader([]byte("payload")), nil)
	require.NoError(t, err)
	got, err := download(t, e, id)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestOpen_RemoteNode(t *testing.T) {
	disk, err := chunks.NewDisk(t.TempDir(), false)
	require.NoError(t, err)
	node := httptest.NewServer(storagehttp.New(disk))
	defer node.Close()

	cfg := config.Default()
	cfg.ChunkStore = node.URL
	cfg.ChunkSize = 3

	e, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer e.Close(context.Background())

	require.NoError(t, e.Ping(context.Background()))
	id, err := e.Upload(context.Background(), "a", bytes.NewReader([]byte("spread over nodes")), nil)
	require.NoError(t, err)
	got, err := download(t, e, id)
	require.NoError(t, err)
	assert.Equal(t, "spread over nodes", string(got))
}

func TestOpen_RejectsUnknownSchemes(t *testing.T) {
	cfg := config.Default()
	cfg.MetaDSN = "mysql://x"
	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.ChunkStore = "s3://bucket"
	_, err = Open(context.Background(), cfg)
	assert.Error(t, err)
}
