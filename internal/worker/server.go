// Package worker runs the expiry sweep outside the API process.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"taskboard/internal/config"
	"taskboard/internal/infra"
	"taskboard/internal/usecase"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Interval time.Duration
	// Once runs a single sweep and exits.
	Once bool
}

func Run(cfg Config) error {
	appCfg := config.Load()
	if cfg.Interval <= 0 {
		cfg.Interval = appCfg.Lifecycle.SweepInterval
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	return run(ctx, appCfg, cfg)
}

func run(ctx context.Context, appCfg *config.Config, cfg Config) error {
	if appCfg.Storage.Driver == config.DriverMemory {
		return fmt.Errorf("worker cannot share the %q storage driver with the api", appCfg.Storage.Driver)
	}
	if !infra.Shared(appCfg.Storage.Driver) {
		log.Ctx(ctx).Warn().
			Str("driver", appCfg.Storage.Driver).
			Msg("storage driver is not safe for concurrent writers, prefer redis or sqlite")
	}

	p, err := infra.OpenPersister(ctx, appCfg.Storage, appCfg.Redis)
	if err != nil {
		return err
	}
	defer p.Close()

	store := usecase.NewTaskStore(ctx, p,
		usecase.WithThreshold(appCfg.Lifecycle.ThresholdMinutes),
		usecase.WithReload(true),
	)
	sweeper := usecase.NewSweeper(store, cfg.Interval)

	if cfg.Once {
		n := sweeper.Once(ctx)
		log.Ctx(ctx).Info().Int("expired", n).Msg("sweep finished")
		return nil
	}

	log.Ctx(ctx).Info().Dur("interval", cfg.Interval).Msg("sweeper started")
	if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Ctx(ctx).Info().Msg("sweeper stopped")
	return nil
}
