package chunks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/sir_venger/gridfiles/pkg/ctxio"
)

const (
	metaFileName        = "meta.json"
	chunkFilenameFormat = "chunk-%06d"
	maxIDLength         = 128
)

// Disk хранит чанки в каталоге на локальном диске.
type Disk struct {
	root     string
	compress bool

	// mu сериализует обновления meta.json
	mu sync.Mutex
}

var _ Store = (*Disk)(nil)

// NewDisk создаёт хранилище поверх каталога root. При compress чанки пишутся в формате zstd.
func NewDisk(root string, compress bool) (*Disk, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}

	return &Disk{root: root, compress: compress}, nil
}

// Root возвращает корневой каталог хранилища.
func (d *Disk) Root() string {
	return d.root
}

// PutChunk пишет чанк во временный файл и публикует его переименованием.
func (d *Disk) PutChunk(ctx context.Context, fileID string, n int, r io.Reader, size int64, sha string) error {
	if err := validateID(fileID); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("invalid chunk index %d", n)
	}

	dir := filepath.Join(d.root, fileID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-chunk-*")
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	var (
		dst io.Writer = tmp
		enc *zstd.Encoder
	)
	if d.compress {
		enc, err = zstd.NewWriter(tmp)
		if err != nil {
			return err
		}
		dst = enc
	}

	h := sha256.New()
	written, err := io.Copy(io.MultiWriter(dst, h), ctxio.Reader(ctx, r))
	if err != nil {
		if enc != nil {
			_ = enc.Close()
		}
		return err
	}
	if enc != nil {
		if err = enc.Close(); err != nil {
			return err
		}
	}
	if size >= 0 && written != size {
		return fmt.Errorf("chunk %d: %w: want %d, got %d", n, ErrSizeMismatch, size, written)
	}
	got := hex.EncodeToString(h.Sum(nil))
	if sha != "" && got != sha {
		return fmt.Errorf("chunk %d: %w", n, ErrChecksumMismatch)
	}

	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), filepath.Join(dir, fmt.Sprintf(chunkFilenameFormat, n))); err != nil {
		return err
	}
	committed = true

	return d.updateMeta(fileID, func(fm *fileMeta) {
		// повторный PUT перезаписывает размер/хеш
		fm.Chunks[n] = chunkMeta{Index: n, Size: written, Sha256: got}
	})
}

// GetChunk открывает чанк на чтение, при необходимости распаковывая zstd.
func (d *Disk) GetChunk(ctx context.Context, fileID string, n int) (io.ReadCloser, error) {
	if err := validateID(fileID); err != nil {
		return nil, ErrChunkNotFound
	}

	f, err := os.Open(filepath.Join(d.root, fileID, fmt.Sprintf(chunkFilenameFormat, n)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %s chunk %d: %w", fileID, n, ErrChunkNotFound)
		}
		return nil, err
	}

	if !d.compress {
		return ctxio.ReadCloser(ctx, f), nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return ctxio.ReadCloser(ctx, &zstdReadCloser{dec: dec, f: f}), nil
}

// ChunkInfo возвращает размер и хеш чанка из meta.json.
func (d *Disk) ChunkInfo(fileID string, n int) (int64, string, error) {
	if err := validateID(fileID); err != nil {
		return 0, "", ErrChunkNotFound
	}

	fm, err := readMeta(filepath.Join(d.root, fileID, metaFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, "", ErrChunkNotFound
		}
		return 0, "", err
	}
	cm, ok := fm.Chunks[n]
	if !ok {
		return 0, "", ErrChunkNotFound
	}

	return cm.Size, cm.Sha256, nil
}

// Seal фиксирует число чанков и помечает файл завершённым.
func (d *Disk) Seal(_ context.Context, fileID string, total int) error {
	if err := validateID(fileID); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(d.root, fileID), 0o755); err != nil {
		return err
	}

	var missing []int
	err := d.updateMeta(fileID, func(fm *fileMeta) {
		for i := 0; i < total; i++ {
			if _, ok := fm.Chunks[i]; !ok {
				missing = append(missing, i)
			}
		}
		if len(missing) == 0 {
			fm.TotalChunks = total
			fm.Sealed = true
		}
	})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("seal %s: missing chunks %v: %w", fileID, missing, ErrChunkNotFound)
	}

	return nil
}

// DeleteChunks удаляет каталог файла. Отсутствующий каталог не считается ошибкой.
func (d *Disk) DeleteChunks(_ context.Context, fileID string) error {
	if err := validateID(fileID); err != nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return os.RemoveAll(filepath.Join(d.root, fileID))
}

// Ping проверяет, что корневой каталог существует.
func (d *Disk) Ping(context.Context) error {
	info, err := os.Stat(d.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", d.root)
	}

	return nil
}

// Usage суммирует размер всех файлов в каталоге хранилища.
func (d *Disk) Usage() (int64, error) {
	var total int64
	err := filepath.WalkDir(d.root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		total += info.Size()

		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}

	return total, nil
}

func (d *Disk) updateMeta(fileID string, fn func(fm *fileMeta)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	path := filepath.Join(d.root, fileID, metaFileName)
	fm, err := readMeta(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		fm = &fileMeta{FileID: fileID}
	default:
		return err
	}
	if fm.Chunks == nil {
		fm.Chunks = map[int]chunkMeta{}
	}

	fn(fm)

	return writeMeta(path, fm)
}

type zstdReadCloser struct {
	dec *zstd.Decoder
	f   *os.File
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.f.Close()
}

// validateID не пускает в путь ничего, кроме [A-Za-z0-9_-].
func validateID(id string) error {
	if id == "" || len(id) > maxIDLength {
		return ErrInvalidID
	}
	for _, r := range id {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
		if !ok {
			return ErrInvalidID
		}
	}

	return nil
}

// chunkMeta описывает один сохранённый чанк.
type chunkMeta struct {
	Index  int    `json:"index"`
	Size   int64  `json:"size"`
	Sha256 string `json:"sha256"`
}

// fileMeta хранится на диске и агрегирует информацию обо всех чанках файла.
type fileMeta struct {
	FileID      string            `json:"file_id"`
	TotalChunks int               `json:"total_chunks"`
	Sealed      bool              `json:"sealed"`
	Chunks      map[int]chunkMeta `json:"chunks"`
}

func writeMeta(path string, fm *fileMeta) error {
	b, err := json.MarshalIndent(fm, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// readMeta читает метаданные файла с диска.
func readMeta(path string) (*fileMeta, error) {
	// meta.json маленький, ReadFile достаточно
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fm fileMeta
	if err := json.Unmarshal(b, &fm); err != nil {
		return nil, err
	}

	return &fm, nil
}
