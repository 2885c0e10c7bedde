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

	"github.com/sir_venger/gridfiles/internal/app/resthttp"
	"github.com/sir_venger/gridfiles/internal/config"
	"github.com/sir_venger/gridfiles/internal/logging"
	"github.com/sir_venger/gridfiles/internal/telemetry"
)

const serviceName = "gridfiles-rest"

// main инициализирует REST HTTP-сервис и обеспечивает корректное завершение по сигналу.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err = logging.Initialize(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("init logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupCtx, cancelSetup := context.WithTimeout(ctx, 30*time.Second)
	shutdownTelemetry, err := telemetry.Setup(setupCtx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("init telemetry")
	}

	handler, srv, err := resthttp.NewServer(setupCtx, cfg)
	cancelSetup()
	if err != nil {
		log.Fatal().Err(err).Msg("init rest server")
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Сценарий graceful shutdown при получении SIGTERM/SIGINT.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("REST shutdown error")
		}
	}()

	log.Info().Str("addr", cfg.ListenAddr).Str("driver", cfg.StoreDriver).Msg("REST listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("REST server failed")
	}
	stop()

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Close(closeCtx); err != nil {
		log.Error().Err(err).Msg("close store")
	}
	if err := shutdownTelemetry(closeCtx); err != nil {
		log.Error().Err(err).Msg("shutdown telemetry")
	}
	log.Info().Msg("REST stopped")
}
