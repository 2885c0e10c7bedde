package chunked

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sir_venger/gridfiles/internal/chunks"
	"github.com/sir_venger/gridfiles/internal/config"
	meta "github.com/sir_venger/gridfiles/internal/repo/meta"
	"github.com/sir_venger/gridfiles/pkg/storageclient"
)

// Open собирает движок из конфигурации: meta_dsn выбирает хранилище записей,
// chunk_store: локальный каталог (file://) или удалённый узел (http(s)://).
func Open(ctx context.Context, cfg *config.Config) (*Engine, error) {
	records, err := openRecords(ctx, cfg.MetaDSN)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(cfg.ChunkStore)
	if err != nil {
		records.Close()
		return nil, fmt.Errorf("parse chunk_store: %w", err)
	}

	var (
		store  chunks.Store
		stopGC func()
	)
	switch u.Scheme {
	case "file":
		disk, err := chunks.NewDisk(u.Host+u.Path, cfg.CompressChunks)
		if err != nil {
			records.Close()
			return nil, err
		}
		store = disk
		stopGC = chunks.StartGC(disk, cfg.GCTTL, cfg.GCInterval)
	case "http", "https":
		store = storageclient.New(cfg.ChunkStore)
	default:
		records.Close()
		return nil, fmt.Errorf("unsupported chunk_store scheme %q", u.Scheme)
	}

	e := New(records, store, cfg.ChunkSize)
	if stopGC != nil {
		e.onClose = append(e.onClose, stopGC)
	}

	return e, nil
}

func openRecords(ctx context.Context, dsn string) (Records, error) {
	switch {
	case strings.HasPrefix(dsn, "memory://"):
		return meta.NewMemoryStore(), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return meta.NewPGStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported meta_dsn %q", dsn)
	}
}
