package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sir_venger/gridfiles/internal/models"
)

const (
	DriverChunked = "chunked"
	DriverGridFS  = "gridfs"

	defaultConfigPath = "./config.yaml"
)

type Config struct {
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
	LogLevel   string `yaml:"log_level" json:"log_level"`
	LogFormat  string `yaml:"log_format" json:"log_format"`

	StoreDriver string `yaml:"store_driver" json:"store_driver"`

	// GridFS
	MongoURI string `yaml:"mongo_uri" json:"-"`
	Database string `yaml:"database" json:"database"`
	Bucket   string `yaml:"bucket" json:"bucket"`

	// Локальный чанковый движок
	MetaDSN        string        `yaml:"meta_dsn" json:"-"`
	ChunkStore     string        `yaml:"chunk_store" json:"chunk_store"`
	ChunkSize      int64         `yaml:"chunk_size" json:"chunk_size"`
	CompressChunks bool          `yaml:"compress_chunks" json:"compress_chunks"`
	GCTTL          time.Duration `yaml:"gc_ttl" json:"gc_ttl"`
	GCInterval     time.Duration `yaml:"gc_interval" json:"gc_interval"`

	MaxUploadBytes int64  `yaml:"max_upload_bytes" json:"max_upload_bytes"`
	OTLPEndpoint   string `yaml:"otlp_endpoint" json:"otlp_endpoint"`

	// Узел хранения чанков (cmd/storage)
	NodeListenAddr string `yaml:"node_listen_addr" json:"node_listen_addr"`
	NodeDataDir    string `yaml:"node_data_dir" json:"node_data_dir"`
}

// Default возвращает конфигурацию, с которой сервис стартует без config.yaml.
func Default() *Config {
	return &Config{
		ListenAddr:  ":8080",
		LogLevel:    "info",
		LogFormat:   "console",
		StoreDriver: DriverChunked,
		Database:    "files",
		Bucket:      "fs",
		MetaDSN:     "memory://",
		ChunkStore:  "file://./data/chunks",
		ChunkSize:   models.DefaultChunkSize,
		GCTTL:       24 * time.Hour,
		GCInterval:  30 * time.Minute,

		NodeListenAddr: ":8081",
		NodeDataDir:    "/data",
	}
}

// Load читает YAML-конфигурацию, применяет ENV-переопределения и возвращает актуальную структуру.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	c := Default()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// без config.yaml работаем на значениях по умолчанию
	default:
		return nil, err
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) applyEnv() error {
	// ENV override
	strs := []struct {
		key string
		dst *string
	}{
		{"LISTEN_ADDR", &c.ListenAddr},
		{"LOG_LEVEL", &c.LogLevel},
		{"LOG_FORMAT", &c.LogFormat},
		{"STORE_DRIVER", &c.StoreDriver},
		{"MONGO_URI", &c.MongoURI},
		{"DATABASE", &c.Database},
		{"BUCKET", &c.Bucket},
		{"META_DSN", &c.MetaDSN},
		{"CHUNK_STORE", &c.ChunkStore},
		{"OTLP_ENDPOINT", &c.OTLPEndpoint},
		{"NODE_LISTEN_ADDR", &c.NodeListenAddr},
		{"DATA_DIR", &c.NodeDataDir},
	}
	for _, e := range strs {
		if v := os.Getenv(e.key); v != "" {
			*e.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int64
	}{
		{"CHUNK_SIZE", &c.ChunkSize},
		{"MAX_UPLOAD_BYTES", &c.MaxUploadBytes},
	}
	for _, e := range ints {
		if v := os.Getenv(e.key); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"GC_TTL", &c.GCTTL},
		{"GC_INTERVAL", &c.GCInterval},
	}
	for _, e := range durations {
		if v := os.Getenv(e.key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = d
		}
	}

	if v := os.Getenv("COMPRESS_CHUNKS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COMPRESS_CHUNKS: %w", err)
		}
		c.CompressChunks = b
	}

	return nil
}

// Validate проверяет согласованность настроек выбранного драйвера.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverChunked:
		if c.ChunkSize <= 0 {
			return fmt.Errorf("chunk_size must be > 0")
		}
		if strings.TrimSpace(c.ChunkStore) == "" {
			return fmt.Errorf("chunk_store is not configured")
		}
		if strings.TrimSpace(c.MetaDSN) == "" {
			return fmt.Errorf("meta_dsn is not configured")
		}
	case DriverGridFS:
		if strings.TrimSpace(c.MongoURI) == "" {
			return fmt.Errorf("mongo_uri is not configured")
		}
		if strings.TrimSpace(c.Bucket) == "" {
			return fmt.Errorf("bucket is not configured")
		}
	default:
		return fmt.Errorf("unknown store_driver %q", c.StoreDriver)
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("max_upload_bytes must be >= 0")
	}

	return nil
}
