package storageclient_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/gridfiles/internal/app/storagehttp"
	"github.com/sir_venger/gridfiles/internal/chunks"
	"github.com/sir_venger/gridfiles/pkg/storageclient"
)

func newClient(t *testing.T) *storageclient.Client {
	t.Helper()
	disk, err := chunks.NewDisk(t.TempDir(), true)
	require.NoError(t, err)

	srv := httptest.NewServer(storagehttp.New(disk))
	t.Cleanup(srv.Close)

	return storageclient.New(srv.URL + "/")
}

func TestClient_RoundTrip(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	payload := bytes.Repeat([]byte("chunk-data"), 100)
	h := sha256.Sum256(payload)

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.PutChunk(ctx, "f1", 0, bytes.NewReader(payload), int64(len(payload)), hex.EncodeToString(h[:])))
	require.NoError(t, c.Seal(ctx, "f1", 1))

	rc, err := c.GetChunk(ctx, "f1", 0)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, payload, got)

	info, err := c.Health(ctx)
	require.NoError(t, err)
	assert.True(t, info.OK)
	assert.Positive(t, info.TotalBytes)

	require.NoError(t, c.DeleteChunks(ctx, "f1"))
	require.NoError(t, c.DeleteChunks(ctx, "f1"))

	_, err = c.GetChunk(ctx, "f1", 0)
	assert.ErrorIs(t, err, chunks.ErrChunkNotFound)
}

func TestClient_ErrorMapping(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	err := c.PutChunk(ctx, "f1", 0, bytes.NewReader([]byte("abc")), 3, "deadbeef")
	assert.ErrorIs(t, err, chunks.ErrChecksumMismatch)

	err = c.Seal(ctx, "f1", 3)
	assert.ErrorIs(t, err, chunks.ErrChunkNotFound)

	err = c.PutChunk(ctx, "bad.id", 0, bytes.NewReader([]byte("abc")), 3, "")
	assert.Error(t, err)
}

func TestClient_PingUnreachable(t *testing.T) {
	c := storageclient.New("http://127.0.0.1:1")
	assert.Error(t, c.Ping(context.Background()))
}
