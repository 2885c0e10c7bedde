// Package chunks хранит чанки файлов на локальном диске.
//
// Каждому файлу соответствует каталог root/<fileID> с файлами chunk-NNNNNN и
// meta.json. Чанк пишется во временный файл и переименовывается только после
// сверки размера и SHA-256, поэтому частично записанный чанк никогда не виден
// читателю. meta.json помечается sealed, когда загрузка файла завершена;
// незапечатанные каталоги старше TTL удаляет GC.
package chunks

import (
	"context"
	"errors"
	"io"
)

var (
	ErrChunkNotFound    = errors.New("chunk not found")
	ErrChecksumMismatch = errors.New("sha256 mismatch")
	ErrSizeMismatch     = errors.New("size mismatch")
	ErrInvalidID        = errors.New("invalid file id")
)

// Store: хранилище чанков, которым пользуется чанковый движок.
type Store interface {
	// PutChunk сохраняет чанк n файла fileID. size и sha256 (hex) сверяются с телом, если заданы.
	PutChunk(ctx context.Context, fileID string, n int, r io.Reader, size int64, sha256 string) error
	// GetChunk открывает чанк на чтение. Для отсутствующего чанка ErrChunkNotFound.
	GetChunk(ctx context.Context, fileID string, n int) (io.ReadCloser, error)
	// Seal помечает загрузку файла завершённой.
	Seal(ctx context.Context, fileID string, total int) error
	// DeleteChunks удаляет все чанки файла; отсутствие файла не ошибка.
	DeleteChunks(ctx context.Context, fileID string) error
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}
