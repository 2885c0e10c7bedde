package main

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sir_venger/gridfiles/internal/config"
	"github.com/sir_venger/gridfiles/internal/logging"
	meta "github.com/sir_venger/gridfiles/internal/repo/meta"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err = logging.Initialize(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("init logging")
	}

	if cfg.StoreDriver != config.DriverChunked {
		log.Info().Str("driver", cfg.StoreDriver).Msg("driver keeps no records in postgres, skipping migrations")
		return
	}

	dsn := strings.TrimSpace(cfg.MetaDSN)
	if strings.HasPrefix(dsn, "memory://") {
		log.Info().Msg("memory meta store selected, skipping migrations")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := meta.ApplyMigrations(ctx, dsn); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	log.Info().Msg("migrations applied")
}
