// Package gridfs хранит файлы в MongoDB GridFS.
package gridfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	mgridfs "go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sir_venger/gridfiles/internal/config"
	"github.com/sir_venger/gridfiles/internal/models"
	"github.com/sir_venger/gridfiles/internal/usecase/filesvc"
	"github.com/sir_venger/gridfiles/pkg/ctxio"
)

// Store: обёртка над gridfs.Bucket.
type Store struct {
	client *mongo.Client
	bucket *mgridfs.Bucket
}

var _ filesvc.Bucket = (*Store)(nil)

// Open подключается к MongoDB и открывает бакет cfg.Bucket в базе cfg.Database.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	bucket, err := mgridfs.NewBucket(client.Database(cfg.Database), options.GridFSBucket().SetName(cfg.Bucket))
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("open bucket %s: %w", cfg.Bucket, err)
	}

	return &Store{client: client, bucket: bucket}, nil
}

// fileDoc: документ коллекции <bucket>.files.
type fileDoc struct {
	ID         bson.RawValue `bson:"_id"`
	Length     int64         `bson:"length"`
	ChunkSize  int64         `bson:"chunkSize"`
	UploadDate time.Time     `bson:"uploadDate"`
	Filename   string        `bson:"filename"`
	Metadata   bson.RawValue `bson:"metadata"`
}

func (d fileDoc) toModel() (models.File, error) {
	md, err := metadataFromRaw(d.Metadata)
	if err != nil {
		return models.File{}, err
	}

	return models.File{
		ID:         idString(d.ID),
		Name:       d.Filename,
		Length:     d.Length,
		ChunkSize:  d.ChunkSize,
		UploadDate: d.UploadDate.UTC(),
		Metadata:   md,
	}, nil
}

// Find возвращает файлы в порядке хранения.
func (s *Store) Find(ctx context.Context, filter models.Filter) ([]models.File, error) {
	q, ok := query(filter)
	if !ok {
		return []models.File{}, nil
	}

	cur, err := s.bucket.FindContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cur.Close(ctx)

	files := make([]models.File, 0)
	for cur.Next(ctx) {
		var d fileDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode file: %w", err)
		}
		f, err := d.toModel()
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	return files, cur.Err()
}

// FindOne возвращает первый подходящий файл или models.ErrNotFound.
func (s *Store) FindOne(ctx context.Context, filter models.Filter) (models.File, error) {
	files, err := s.Find(ctx, filter)
	if err != nil {
		return models.File{}, err
	}
	if len(files) == 0 {
		return models.File{}, models.ErrNotFound
	}

	return files[0], nil
}

// Upload пишет поток в GridFS. При ошибке уже записанные чанки удаляются через Abort.
func (s *Store) Upload(ctx context.Context, filename string, r io.Reader, metadata models.Metadata) (string, error) {
	opts := options.GridFSUpload()
	if metadata != nil {
		opts.SetMetadata(bson.M(metadata))
	}

	us, err := s.bucket.OpenUploadStream(filename, opts)
	if err != nil {
		return "", fmt.Errorf("open upload stream: %w", err)
	}

	if _, err = io.Copy(us, ctxio.Reader(ctx, r)); err != nil {
		if aerr := us.Abort(); aerr != nil {
			log.Ctx(ctx).Warn().Err(aerr).Str("filename", filename).Msg("gridfs abort failed")
		}
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err = us.Close(); err != nil {
		return "", fmt.Errorf("finish upload: %w", err)
	}

	oid, ok := us.FileID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected file id type %T", us.FileID)
	}

	return oid.Hex(), nil
}

// OpenDownloadStream открывает поток чтения файла.
func (s *Store) OpenDownloadStream(ctx context.Context, file models.File) (io.ReadCloser, error) {
	oid, err := primitive.ObjectIDFromHex(file.ID)
	if err != nil {
		return nil, models.ErrNotFound
	}

	ds, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, mgridfs.ErrFileNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("open download stream: %w", err)
	}

	return ctxio.ReadCloser(ctx, ds), nil
}

// Delete удаляет файлы по фильтру. Пустой фильтр сбрасывает весь бакет.
func (s *Store) Delete(ctx context.Context, filter models.Filter) error {
	if filter.MatchesAll() {
		if err := s.bucket.DropContext(ctx); err != nil {
			return fmt.Errorf("drop bucket: %w", err)
		}
		return nil
	}

	oid, err := primitive.ObjectIDFromHex(filter.ID)
	if err != nil {
		return nil
	}

	err = s.bucket.DeleteContext(ctx, oid)
	if err != nil && !errors.Is(err, mgridfs.ErrFileNotFound) {
		return fmt.Errorf("delete %s: %w", filter.ID, err)
	}

	return nil
}

// Ping проверяет соединение с primary.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close закрывает соединения клиента.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// query переводит фильтр в запрос к коллекции files. ok=false означает, что
// под фильтр гарантированно ничего не попадёт.
func query(filter models.Filter) (bson.D, bool) {
	if filter.MatchesAll() {
		return bson.D{}, true
	}

	oid, err := primitive.ObjectIDFromHex(filter.ID)
	if err != nil {
		return nil, false
	}

	return bson.D{{Key: "_id", Value: oid}}, true
}

func idString(v bson.RawValue) string {
	switch v.Type {
	case bson.TypeObjectID:
		return v.ObjectID().Hex()
	case bson.TypeString:
		return v.StringValue()
	default:
		return v.String()
	}
}

// metadataFromRaw переводит BSON-документ в обычную карту через relaxed Extended JSON,
// чтобы вложенные документы стали map[string]any, а не primitive.D.
func metadataFromRaw(v bson.RawValue) (models.Metadata, error) {
	if v.Type != bson.TypeEmbeddedDocument {
		return nil, nil
	}

	b, err := bson.MarshalExtJSON(v.Document(), false, false)
	if err != nil {
		return nil, fmt.Errorf("metadata to json: %w", err)
	}

	var md models.Metadata
	if err := json.Unmarshal(b, &md); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	return md, nil
}
