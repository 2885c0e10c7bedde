package meta

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sir_venger/gridfiles/internal/models"
)

// Save записывает запись о файле. Записи неизменяемы, поэтому повторный id считается ошибкой.
func (s *PGStore) Save(ctx context.Context, file models.File) error {
	var metadataJSON []byte
	if file.Metadata != nil {
		b, err := json.Marshal(file.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metadataJSON = b
	}

	chunks := file.Chunks
	if chunks == nil {
		chunks = []models.Chunk{}
	}
	chunksJSON, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}

	sqlStr, args, err := psql().
		Insert(filesMetaTable).
		Columns("id", "file_name", "length", "chunk_size", "upload_date", "metadata", "chunks").
		Values(file.ID, file.Name, file.Length, file.ChunkSize, file.UploadDate, metadataJSON, chunksJSON).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert sql: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("exec insert: %w", err)
	}

	return nil
}
