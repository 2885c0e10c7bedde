package meta

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Delete удаляет запись. Отсутствующая запись не считается ошибкой.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := psql().
		Delete(filesMetaTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err = s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("exec delete: %w", err)
	}

	return nil
}

// DeleteAll удаляет все записи и возвращает их идентификаторы, чтобы вызывающий
// мог убрать чанки.
func (s *PGStore) DeleteAll(ctx context.Context) ([]string, error) {
	sqlStr, args, err := psql().
		Delete(filesMetaTable).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("exec delete: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
