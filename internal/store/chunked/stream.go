package chunked

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/sir_venger/gridfiles/internal/chunks"
	"github.com/sir_venger/gridfiles/internal/models"
)

// downloadStream отдаёт чанки файла по порядку и сверяет размер и SHA-256 каждого.
type downloadStream struct {
	ctx   context.Context
	store chunks.Store
	file  models.File

	next    int
	cur     io.ReadCloser
	curSize int64
	h       hash.Hash
	err     error
}

func (s *downloadStream) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	for {
		if s.cur == nil {
			if s.next >= len(s.file.Chunks) {
				s.err = io.EOF
				return 0, s.err
			}
			if err := s.open(); err != nil {
				s.err = err
				return 0, err
			}
		}

		n, err := s.cur.Read(p)
		s.h.Write(p[:n])
		s.curSize += int64(n)

		switch {
		case errors.Is(err, io.EOF):
			if verr := s.finishChunk(); verr != nil {
				s.err = verr
				return n, verr
			}
		case err != nil:
			s.err = fmt.Errorf("file %s chunk %d: %w", s.file.ID, s.next, err)
			return n, s.err
		}

		if n > 0 {
			return n, nil
		}
	}
}

func (s *downloadStream) open() error {
	rc, err := s.store.GetChunk(s.ctx, s.file.ID, s.file.Chunks[s.next].Index)
	if err != nil {
		if errors.Is(err, chunks.ErrChunkNotFound) {
			return fmt.Errorf("file %s chunk %d missing: %w", s.file.ID, s.next, models.ErrCorruptChunk)
		}
		return fmt.Errorf("file %s chunk %d: %w", s.file.ID, s.next, err)
	}

	s.cur = rc
	s.curSize = 0
	if s.h == nil {
		s.h = sha256.New()
	} else {
		s.h.Reset()
	}

	return nil
}

func (s *downloadStream) finishChunk() error {
	want := s.file.Chunks[s.next]
	_ = s.cur.Close()
	s.cur = nil
	s.next++

	if s.curSize != want.Size {
		return fmt.Errorf("file %s chunk %d: size %d, want %d: %w", s.file.ID, want.Index, s.curSize, want.Size, models.ErrCorruptChunk)
	}
	if want.Sha256 != "" && hex.EncodeToString(s.h.Sum(nil)) != want.Sha256 {
		return fmt.Errorf("file %s chunk %d: checksum mismatch: %w", s.file.ID, want.Index, models.ErrCorruptChunk)
	}

	return nil
}

func (s *downloadStream) Close() error {
	if s.err == nil {
		s.err = io.ErrClosedPipe
	}
	if s.cur != nil {
		err := s.cur.Close()
		s.cur = nil
		return err
	}

	return nil
}
