// Package chunked реализует локальный движок хранения в духе GridFS: поток режется на чанки
// фиксированного размера, чанки уходят в chunks.Store, а запись о файле сохраняется
// последней и только после неё файл становится видимым.
package chunked

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sir_venger/gridfiles/internal/chunks"
	"github.com/sir_venger/gridfiles/internal/models"
	"github.com/sir_venger/gridfiles/internal/usecase/filesvc"
	"github.com/sir_venger/gridfiles/pkg/ctxio"
)

const defaultDeleteParallelism = 8

// Records: хранилище записей о файлах (internal/repo/meta).
type Records interface {
	Get(ctx context.Context, id string) (models.File, error)
	List(ctx context.Context) ([]models.File, error)
	Save(ctx context.Context, file models.File) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close()
}

// Engine связывает записи и чанки в одно файловое хранилище.
type Engine struct {
	records Records
	chunks  chunks.Store
	plan    models.ChunkPlan

	deleteParallelism int
	now               func() time.Time
	onClose           []func()
}

var _ filesvc.Bucket = (*Engine)(nil)

// New создаёт движок. chunkSize <= 0 означает размер по умолчанию.
func New(records Records, store chunks.Store, chunkSize int64) *Engine {
	return &Engine{
		records:           records,
		chunks:            store,
		plan:              models.NewChunkPlan(chunkSize),
		deleteParallelism: defaultDeleteParallelism,
		now:               time.Now,
	}
}

// Find возвращает записи, подходящие под фильтр.
func (e *Engine) Find(ctx context.Context, filter models.Filter) ([]models.File, error) {
	if filter.MatchesAll() {
		return e.records.List(ctx)
	}

	f, err := e.records.Get(ctx, filter.ID)
	if errors.Is(err, models.ErrNotFound) {
		return []models.File{}, nil
	}
	if err != nil {
		return nil, err
	}

	return []models.File{f}, nil
}

// FindOne возвращает первую подходящую запись или models.ErrNotFound.
func (e *Engine) FindOne(ctx context.Context, filter models.Filter) (models.File, error) {
	if !filter.MatchesAll() {
		return e.records.Get(ctx, filter.ID)
	}

	files, err := e.records.List(ctx)
	if err != nil {
		return models.File{}, err
	}
	if len(files) == 0 {
		return models.File{}, models.ErrNotFound
	}

	return files[0], nil
}

// Upload режет поток на чанки и сохраняет запись последней.
// При любой ошибке уже записанные чанки удаляются, id не возвращается.
func (e *Engine) Upload(ctx context.Context, filename string, r io.Reader, metadata models.Metadata) (string, error) {
	id := uuid.NewString()
	logger := log.Ctx(ctx).With().Str("file_id", id).Logger()

	file, err := e.writeChunks(ctx, id, r)
	if err == nil {
		file.Name = filename
		file.Metadata = metadata.Clone()
		file.UploadDate = e.now().UTC()
		err = e.records.Save(ctx, file)
	}
	if err != nil {
		// клиент мог уйти, но мусор всё равно нужно убрать
		if derr := e.chunks.DeleteChunks(context.WithoutCancel(ctx), id); derr != nil {
			logger.Warn().Err(derr).Msg("failed to remove chunks of aborted upload")
		}
		return "", err
	}

	logger.Debug().Int64("length", file.Length).Int("chunks", len(file.Chunks)).Msg("upload stored")

	return id, nil
}

func (e *Engine) writeChunks(ctx context.Context, id string, r io.Reader) (models.File, error) {
	file := models.File{
		ID:        id,
		ChunkSize: e.plan.Size,
		Chunks:    []models.Chunk{},
	}

	src := ctxio.Reader(ctx, r)
	buf := make([]byte, e.plan.Size)
	for n := 0; ; n++ {
		k, err := fillChunk(src, buf)
		// io.EOF по контракту io.Reader приходит без обёртки
		if err != nil && err != io.EOF {
			return models.File{}, fmt.Errorf("read upload: %w", err)
		}
		if k > 0 {
			h := sha256.Sum256(buf[:k])
			sum := hex.EncodeToString(h[:])
			if perr := e.chunks.PutChunk(ctx, id, n, bytes.NewReader(buf[:k]), int64(k), sum); perr != nil {
				return models.File{}, fmt.Errorf("put chunk %d: %w", n, perr)
			}
			file.Chunks = append(file.Chunks, models.Chunk{Index: n, Size: int64(k), Sha256: sum})
			file.Length += int64(k)
		}
		if err != nil {
			break
		}
	}

	if err := e.chunks.Seal(ctx, id, len(file.Chunks)); err != nil {
		return models.File{}, fmt.Errorf("seal: %w", err)
	}

	return file, nil
}

// fillChunk читает до заполнения buf. В отличие от io.ReadFull, ошибку источника
// возвращает как есть: io.ErrUnexpectedEOF от обрезанного тела не должен
// сойти за конец потока.
func fillChunk(r io.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		k, err := r.Read(buf[n:])
		n += k
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

// OpenDownloadStream открывает ленивый поток, читающий чанки по одному с проверкой хешей.
func (e *Engine) OpenDownloadStream(ctx context.Context, file models.File) (io.ReadCloser, error) {
	return &downloadStream{
		ctx:   ctx,
		store: e.chunks,
		file:  file,
	}, nil
}

// Delete удаляет записи по фильтру вместе с их чанками. Отсутствующий id не считается ошибкой.
func (e *Engine) Delete(ctx context.Context, filter models.Filter) error {
	if filter.MatchesAll() {
		return e.deleteAll(ctx)
	}

	if _, err := e.records.Get(ctx, filter.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := e.records.Delete(ctx, filter.ID); err != nil {
		return err
	}

	return e.chunks.DeleteChunks(ctx, filter.ID)
}

func (e *Engine) deleteAll(ctx context.Context) error {
	ids, err := e.records.DeleteAll(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.deleteParallelism)
	for _, id := range ids {
		g.Go(func() error {
			if err := e.chunks.DeleteChunks(gctx, id); err != nil {
				return fmt.Errorf("delete chunks of %s: %w", id, err)
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}

	log.Ctx(ctx).Debug().Int("files", len(ids)).Msg("all files removed")

	return nil
}

// Ping проверяет обе половины хранилища.
func (e *Engine) Ping(ctx context.Context) error {
	if err := e.records.Ping(ctx); err != nil {
		return fmt.Errorf("records: %w", err)
	}
	if err := e.chunks.Ping(ctx); err != nil {
		return fmt.Errorf("chunks: %w", err)
	}

	return nil
}

// Close останавливает фоновые задачи и закрывает хранилище записей.
func (e *Engine) Close(context.Context) error {
	for _, fn := range e.onClose {
		fn()
	}
	e.records.Close()

	return nil
}
