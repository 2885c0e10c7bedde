package resthttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sir_venger/gridfiles/internal/config"
	"github.com/sir_venger/gridfiles/internal/logging"
	"github.com/sir_venger/gridfiles/internal/store/chunked"
	"github.com/sir_venger/gridfiles/internal/store/gridfs"
	"github.com/sir_venger/gridfiles/internal/usecase/filesvc"
)

type Server struct {
	Files filesvc.FileStore
	Cfg   *config.Config

	bucket  filesvc.Bucket
	metrics *metrics
}

// NewServer конструктор: открывает хранилище из cfg и собирает HTTP-обработчик.
func NewServer(ctx context.Context, cfg *config.Config) (http.Handler, *Server, error) {
	bucket, err := openBucket(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	h, srv, err := NewHandler(filesvc.New(bucket), cfg)
	if err != nil {
		_ = bucket.Close(ctx)
		return nil, nil, err
	}
	srv.bucket = bucket

	return h, srv, nil
}

// NewHandler собирает роутер поверх готового сервиса файлов.
func NewHandler(files filesvc.FileStore, cfg *config.Config) (http.Handler, *Server, error) {
	m, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}

	srv := &Server{
		Files:   files,
		Cfg:     cfg,
		metrics: m,
	}

	return srv.routes(), srv, nil
}

// Close закрывает хранилище, открытое в NewServer.
func (s *Server) Close(ctx context.Context) error {
	if s.bucket == nil {
		return nil
	}

	return s.bucket.Close(ctx)
}

func (s *Server) routes() http.Handler {
	rtr := chi.NewRouter()
	rtr.Use(
		otelhttp.NewMiddleware("gridfiles"),
		middleware.Recoverer,
		logging.Interceptor,
	)

	rtr.Method(http.MethodGet, "/files", route("/files", s.listFiles))
	rtr.Method(http.MethodPost, "/files", route("/files", s.postFiles))
	rtr.Method(http.MethodDelete, "/files", route("/files", s.deleteFiles))
	rtr.Method(http.MethodGet, "/files/{id}", route("/files/{id}", s.getFile))
	rtr.Method(http.MethodDelete, "/files/{id}", route("/files/{id}", s.deleteFile))
	rtr.Method(http.MethodGet, "/files/{id}/metadata", route("/files/{id}/metadata", s.getMetadata))

	rtr.Get("/health", s.health)
	rtr.Get("/admin/config", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, http.StatusOK, s.Cfg) })
	rtr.Handle("/metrics", promhttp.Handler())

	return rtr
}

func route(pattern string, h http.HandlerFunc) http.Handler {
	return otelhttp.WithRouteTag(pattern, h)
}

func openBucket(ctx context.Context, cfg *config.Config) (filesvc.Bucket, error) {
	switch cfg.StoreDriver {
	case config.DriverGridFS:
		store, err := gridfs.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverChunked:
		engine, err := chunked.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("unknown store_driver %q", cfg.StoreDriver)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
