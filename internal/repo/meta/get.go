package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/sir_venger/gridfiles/internal/models"
)

var fileColumns = []string{
	"id",
	"file_name",
	"length",
	"chunk_size",
	"upload_date",
	"metadata",
	"COALESCE(chunks, '[]'::jsonb) AS chunks",
}

// Get возвращает запись о файле по идентификатору.
func (s *PGStore) Get(ctx context.Context, id string) (models.File, error) {
	sqlStr, args, err := psql().
		Select(fileColumns...).
		From(filesMetaTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return models.File{}, fmt.Errorf("build select: %w", err)
	}

	file, err := scanFile(s.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.File{}, models.ErrNotFound
		}
		return models.File{}, fmt.Errorf("scan file row: %w", err)
	}

	return file, nil
}

// List возвращает все записи в порядке сохранения.
func (s *PGStore) List(ctx context.Context) ([]models.File, error) {
	sqlStr, args, err := psql().
		Select(fileColumns...).
		From(filesMetaTable).
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	files := make([]models.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		files = append(files, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return files, nil
}

func scanFile(row pgx.Row) (models.File, error) {
	var (
		f           models.File
		uploadDate  time.Time
		metadataRaw []byte
		chunksRaw   []byte
	)
	if err := row.Scan(&f.ID, &f.Name, &f.Length, &f.ChunkSize, &uploadDate, &metadataRaw, &chunksRaw); err != nil {
		return models.File{}, err
	}
	f.UploadDate = uploadDate.UTC()

	if metadataRaw != nil {
		if err := json.Unmarshal(metadataRaw, &f.Metadata); err != nil {
			return models.File{}, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if err := json.Unmarshal(chunksRaw, &f.Chunks); err != nil {
		return models.File{}, fmt.Errorf("unmarshal chunks: %w", err)
	}

	return f, nil
}
