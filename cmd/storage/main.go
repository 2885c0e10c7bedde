package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sir_venger/gridfiles/internal/app/storagehttp"
	"github.com/sir_venger/gridfiles/internal/chunks"
	"github.com/sir_venger/gridfiles/internal/config"
	"github.com/sir_venger/gridfiles/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err = logging.Initialize(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("init logging")
	}

	disk, err := chunks.NewDisk(cfg.NodeDataDir, cfg.CompressChunks)
	if err != nil {
		log.Fatal().Err(err).Str("data_dir", cfg.NodeDataDir).Msg("open chunk dir")
	}
	h := storagehttp.New(disk)

	// Настраиваем фоновый GC по удалению незавершённых загрузок.
	stopGC := chunks.StartGC(disk, cfg.GCTTL, cfg.GCInterval)
	defer stopGC()

	server := &http.Server{Addr: cfg.NodeListenAddr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("STORAGE shutdown error")
		}
	}()

	log.Info().
		Str("addr", cfg.NodeListenAddr).
		Str("data_dir", cfg.NodeDataDir).
		Bool("compress", cfg.CompressChunks).
		Dur("gc_ttl", cfg.GCTTL).
		Dur("gc_interval", cfg.GCInterval).
		Msg("STORAGE listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("STORAGE server failed")
	}
}
