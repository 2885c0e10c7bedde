package integration

import (
	"net/http"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/gridfiles/internal/config"
)

func Test_GridFS_HelloScenario(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI is not set")
	}

	cfg := config.Default()
	cfg.StoreDriver = config.DriverGridFS
	cfg.MongoURI = uri
	cfg.Database = "gridfiles_test"
	cfg.Bucket = "it" + uuid.NewString()[:8]
	rest := startREST(t, cfg)
	t.Cleanup(func() { deleteURL(t, rest.URL+"/files") })

	id := uploadFile(t, rest.URL, "hello.txt", []byte("hello"), `{"owner":"alice"}`)

	status, got := downloadFile(t, rest.URL, id)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", string(got))

	files := listFiles(t, rest.URL)
	require.Len(t, files, 1)
	assert.Equal(t, "hello.txt", files[0].Filename)
	assert.EqualValues(t, 5, files[0].Length)
	assert.Equal(t, "alice", files[0].Metadata["owner"])

	status, _ = downloadFile(t, rest.URL, "doesnotexist")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, http.StatusNoContent, deleteURL(t, rest.URL+"/files/doesnotexist"))
}
