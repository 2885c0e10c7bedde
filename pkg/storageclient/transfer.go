package storageclient

import (
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// transferReader считает переданные байты и один раз пишет итог передачи чанка в лог.
type transferReader struct {
	inner     io.Reader
	direction string
	fileID    string
	index     int
	started   time.Time

	mu    sync.Mutex
	bytes int64
	done  bool
}

func newTransferReader(inner io.Reader, direction, fileID string, index int) *transferReader {
	return &transferReader{
		inner:     inner,
		direction: direction,
		fileID:    fileID,
		index:     index,
		started:   time.Now(),
	}
}

func (t *transferReader) Read(p []byte) (int, error) {
	n, err := t.inner.Read(p)
	if n > 0 {
		t.mu.Lock()
		t.bytes += int64(n)
		t.mu.Unlock()
	}
	if err != nil && err != io.EOF {
		t.finish(err)
	}
	return n, err
}

// transferReadCloser добавляет Close к transferReader для тел ответов.
type transferReadCloser struct {
	*transferReader
	closer io.Closer
}

func (t transferReadCloser) Close() error {
	err := t.closer.Close()
	t.finish(err)
	return err
}

func (t *transferReader) finish(err error) {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.done = true
	n := t.bytes
	t.mu.Unlock()

	ev := log.Debug()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	ev.Str("direction", t.direction).
		Str("file_id", t.fileID).
		Int("chunk", t.index).
		Int64("bytes", n).
		Dur("duration", time.Since(t.started)).
		Msg("chunk transfer finished")
}
