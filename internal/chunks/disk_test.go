package chunks

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func readChunk(t *testing.T, d *Disk, fileID string, n int) []byte {
	t.Helper()
	rc, err := d.GetChunk(context.Background(), fileID, n)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return b
}

func TestDisk_PutGetRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		d, err := NewDisk(t.TempDir(), compress)
		require.NoError(t, err)
		ctx := context.Background()

		payload := bytes.Repeat([]byte("0123456789abcdef"), 512)
		require.NoError(t, d.PutChunk(ctx, "file1", 0, bytes.NewReader(payload), int64(len(payload)), sum(payload)))
		require.NoError(t, d.PutChunk(ctx, "file1", 1, bytes.NewReader([]byte("tail")), 4, ""))
		require.NoError(t, d.Seal(ctx, "file1", 2))

		assert.Equal(t, payload, readChunk(t, d, "file1", 0), "compress=%v", compress)
		assert.Equal(t, []byte("tail"), readChunk(t, d, "file1", 1), "compress=%v", compress)

		size, sha, err := d.ChunkInfo("file1", 0)
		require.NoError(t, err)
		assert.EqualValues(t, len(payload), size)
		assert.Equal(t, sum(payload), sha)
	}
}

func TestDisk_PutRejectsMismatch(t *testing.T) {
	d, err := NewDisk(t.TempDir(), false)
	require.NoError(t, err)
	ctx := context.Background()

	err = d.PutChunk(ctx, "file1", 0, bytes.NewReader([]byte("abc")), 4, "")
	assert.ErrorIs(t, err, ErrSizeMismatch)

	err = d.PutChunk(ctx, "file1", 0, bytes.NewReader([]byte("abc")), 3, sum([]byte("abd")))
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = d.GetChunk(ctx, "file1", 0)
	assert.ErrorIs(t, err, ErrChunkNotFound, "rejected chunk must not become visible")

	entries, err := os.ReadDir(filepath.Join(d.Root(), "file1"))
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files are cleaned up")
}

func TestDisk_InvalidIDs(t *testing.T) {
	d, err := NewDisk(t.TempDir(), false)
	require.NoError(t, err)
	ctx := context.Background()

	for _, id := range []string{"", "../etc", "a/b", "a.b"} {
		assert.ErrorIs(t, d.PutChunk(ctx, id, 0, bytes.NewReader(nil), 0, ""), ErrInvalidID, id)
		_, err := d.GetChunk(ctx, id, 0)
		assert.ErrorIs(t, err, ErrChunkNotFound, id)
	}
}

func TestDisk_SealRequiresAllChunks(t *testing.T) {
	d, err := NewDisk(t.TempDir(), false)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, d.PutChunk(ctx, "f", 0, bytes.NewReader([]byte("x")), 1, ""))
	assert.ErrorIs(t, d.Seal(ctx, "f", 2), ErrChunkNotFound)
	assert.NoError(t, d.Seal(ctx, "f", 1))
	assert.NoError(t, d.Seal(ctx, "empty", 0))
}

func TestDisk_DeleteIsIdempotent(t *testing.T) {
	d, err := NewDisk(t.TempDir(), false)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, d.PutChunk(ctx, "f", 0, bytes.NewReader([]byte("x")), 1, ""))
	require.NoError(t, d.DeleteChunks(ctx, "f"))
	require.NoError(t, d.DeleteChunks(ctx, "f"))

	_, err = d.GetChunk(ctx, "f", 0)
	assert.ErrorIs(t, err, ErrChunkNotFound)
}

func TestDisk_SweepRemovesStaleUnsealed(t *testing.T) {
	d, err := NewDisk(t.TempDir(), false)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, d.PutChunk(ctx, "stale", 0, bytes.NewReader([]byte("x")), 1, ""))
	require.NoError(t, d.PutChunk(ctx, "sealed", 0, bytes.NewReader([]byte("x")), 1, ""))
	require.NoError(t, d.Seal(ctx, "sealed", 1))
	require.NoError(t, d.PutChunk(ctx, "fresh", 0, bytes.NewReader([]byte("x")), 1, ""))

	old := time.Now().Add(-48 * time.Hour)
	for _, id := range []string{"stale", "sealed"} {
		require.NoError(t, os.Chtimes(filepath.Join(d.Root(), id, metaFileName), old, old))
	}

	removed, err := d.Sweep(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(d.Root(), "stale"))
	assert.True(t, os.IsNotExist(err), "stale dir not removed")
	assert.DirExists(t, filepath.Join(d.Root(), "sealed"))
	assert.DirExists(t, filepath.Join(d.Root(), "fresh"))
}
