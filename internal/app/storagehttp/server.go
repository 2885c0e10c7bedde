package storagehttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sir_venger/gridfiles/internal/chunks"
	"github.com/sir_venger/gridfiles/internal/logging"
)

// Server serves the storage node HTTP API on top of the local filesystem.
type Server struct {
	disk *chunks.Disk
}

// New создаёт HTTP-обработчик стоража поверх дискового хранилища чанков.
func New(disk *chunks.Disk) http.Handler {
	srv := &Server{
		disk: disk,
	}

	return srv.routes()
}

// routes регистрирует обработчики для чанков, здоровья и GC.
func (a *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, logging.Interceptor)

	r.Route("/chunks/{fileID}", func(fr chi.Router) {
		fr.Post("/", a.sealFile)
		fr.Delete("/", a.deleteFile)

		fr.Put("/{idx}", a.putChunk)
		fr.Get("/{idx}", a.getChunk)
		fr.Head("/{idx}", a.inspectChunk)
	})

	r.Get("/health", a.health)
	r.Post("/admin/gc", a.gcOnce)

	return r
}
