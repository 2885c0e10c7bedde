package filesvc

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/sir_venger/gridfiles/internal/models"
)

type (
	// Bucket: чанковое хранилище, поверх которого работает сервис: GridFS или локальный движок.
	Bucket interface {
		Find(ctx context.Context, filter models.Filter) ([]models.File, error)
		FindOne(ctx context.Context, filter models.Filter) (models.File, error)
		Upload(ctx context.Context, filename string, r io.Reader, metadata models.Metadata) (string, error)
		OpenDownloadStream(ctx context.Context, file models.File) (io.ReadCloser, error)
		Delete(ctx context.Context, filter models.Filter) error
		Ping(ctx context.Context) error
		Close(ctx context.Context) error
	}

	// FileStore: операции над файлами, которые нужны HTTP-слою.
	FileStore interface {
		ListAll(ctx context.Context) ([]models.FileInfo, error)
		Store(ctx context.Context, metadata models.Metadata, r io.Reader, filename string) (string, error)
		Fetch(ctx context.Context, id string) (models.FileInfo, io.ReadCloser, error)
		Delete(ctx context.Context, id string) error
		DeleteAll(ctx context.Context) error
		Metadata(ctx context.Context, id string) (models.Metadata, error)
		Ping(ctx context.Context) error
	}
)

// Files переводит вызовы домена в вызовы Bucket. Своего состояния не держит.
type Files struct {
	bucket Bucket
}

var _ FileStore = (*Files)(nil)

// New конструирует сервис поверх хранилища.
func New(bucket Bucket) *Files {
	return &Files{bucket: bucket}
}

// ListAll возвращает все файлы в порядке хранилища; пустой список, если файлов нет.
func (s *Files) ListAll(ctx context.Context) ([]models.FileInfo, error) {
	files, err := s.bucket.Find(ctx, models.All())
	if err != nil {
		return nil, models.WrapStore("list", err)
	}

	out := make([]models.FileInfo, 0, len(files))
	for _, f := range files {
		out = append(out, f.Info())
	}
	log.Ctx(ctx).Debug().Int("count", len(out)).Msg("files listed")

	return out, nil
}

// Store сохраняет поток целиком и возвращает id новой записи.
func (s *Files) Store(ctx context.Context, metadata models.Metadata, r io.Reader, filename string) (string, error) {
	id, err := s.bucket.Upload(ctx, filename, r, metadata)
	if err != nil {
		return "", models.WrapStore("store", err)
	}
	log.Ctx(ctx).Debug().Str("file_id", id).Str("filename", filename).Msg("file stored")

	return id, nil
}

// Fetch находит файл и открывает поток его содержимого. Поток закрывает вызывающий.
func (s *Files) Fetch(ctx context.Context, id string) (models.FileInfo, io.ReadCloser, error) {
	f, err := s.find(ctx, id)
	if err != nil {
		return models.FileInfo{}, nil, err
	}

	rc, err := s.bucket.OpenDownloadStream(ctx, f)
	if err != nil {
		return models.FileInfo{}, nil, models.WrapStore("fetch", err)
	}
	log.Ctx(ctx).Debug().Str("file_id", id).Int64("length", f.Length).Msg("file stream opened")

	return f.Info(), rc, nil
}

// Delete удаляет файл. Отсутствующий id не считается ошибкой.
func (s *Files) Delete(ctx context.Context, id string) error {
	if err := s.bucket.Delete(ctx, models.ByID(id)); err != nil {
		return models.WrapStore("delete", err)
	}
	log.Ctx(ctx).Debug().Str("file_id", id).Msg("file deleted")

	return nil
}

// DeleteAll удаляет все файлы.
func (s *Files) DeleteAll(ctx context.Context) error {
	if err := s.bucket.Delete(ctx, models.All()); err != nil {
		return models.WrapStore("delete all", err)
	}
	log.Ctx(ctx).Debug().Msg("all files deleted")

	return nil
}

// Metadata возвращает только метаданные файла; nil, если их не прикладывали.
func (s *Files) Metadata(ctx context.Context, id string) (models.Metadata, error) {
	f, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	return f.Metadata.Clone(), nil
}

// Ping проверяет готовность хранилища.
func (s *Files) Ping(ctx context.Context) error {
	if err := s.bucket.Ping(ctx); err != nil {
		return models.WrapStore("ping", err)
	}

	return nil
}

func (s *Files) find(ctx context.Context, id string) (models.File, error) {
	if id == "" {
		return models.File{}, models.ErrNotFound
	}

	f, err := s.bucket.FindOne(ctx, models.ByID(id))
	if err != nil {
		return models.File{}, models.WrapStore("find", err)
	}

	return f, nil
}
