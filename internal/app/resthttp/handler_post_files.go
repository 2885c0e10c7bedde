package resthttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sir_venger/gridfiles/internal/models"
	"github.com/sir_venger/gridfiles/pkg/httperrors"
)

const (
	filePartName     = "file"
	metadataPartName = "metadata"

	maxMetadataBytes = 1 << 20
)

// postFiles читает multipart-тело потоком: часть metadata (если есть) должна идти
// раньше части file, а сама часть file передаётся в хранилище без буферизации.
func (s *Server) postFiles(w http.ResponseWriter, r *http.Request) {
	if s.Cfg != nil && s.Cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.Cfg.MaxUploadBytes)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		httperrors.Write(w, r, badRequest(err))
		return
	}

	var (
		metadata models.Metadata
		id       string
		size     int64
	)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.rollback(r.Context(), id)
			httperrors.Write(w, r, badRequest(err))
			return
		}

		switch part.FormName() {
		case metadataPartName:
			if id != "" {
				err = fmt.Errorf("%w: metadata part must precede the file part", models.ErrBadRequest)
				break
			}
			metadata, err = decodeMetadata(part)
		case filePartName:
			if id != "" {
				err = fmt.Errorf("%w: only one file part is allowed", models.ErrBadRequest)
				break
			}
			ur := &uploadReader{r: part}
			id, err = s.Files.Store(r.Context(), metadata, ur, part.FileName())
			size = ur.n
		}
		_ = part.Close()

		if err != nil {
			s.rollback(r.Context(), id)
			httperrors.Write(w, r, err)
			return
		}
	}

	if id == "" {
		httperrors.Write(w, r, fmt.Errorf("%w: %q part is required", models.ErrBadRequest, filePartName))
		return
	}

	s.metrics.uploaded(r.Context(), size)
	writeJSON(w, http.StatusOK, models.UploadResult{ID: id})
}

// rollback удаляет уже сохранённый файл, если запрос в итоге отклонён.
func (s *Server) rollback(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := s.Files.Delete(context.WithoutCancel(ctx), id); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("file_id", id).Msg("rollback of rejected upload failed")
	}
}

func decodeMetadata(part *multipart.Part) (models.Metadata, error) {
	var md models.Metadata
	dec := json.NewDecoder(io.LimitReader(part, maxMetadataBytes))
	if err := dec.Decode(&md); err != nil {
		return nil, badRequest(fmt.Errorf("decode metadata: %w", err))
	}
	// после объекта допускаются только пробелы
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after metadata object", models.ErrBadRequest)
	}

	return md, nil
}

// uploadReader считает байты части file и помечает ошибки чтения тела как
// ErrBadRequest: обрезанный запрос не является сбоем хранилища.
type uploadReader struct {
	r io.Reader
	n int64
}

func (u *uploadReader) Read(p []byte) (int, error) {
	n, err := u.r.Read(p)
	u.n += int64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, badRequest(fmt.Errorf("read file part: %w", err))
	}
	return n, err
}

// badRequest помечает ошибку разбора тела как 400, не трогая превышение лимита (413).
func badRequest(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}

	return fmt.Errorf("%w: %w", models.ErrBadRequest, err)
}
