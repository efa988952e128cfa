package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"taskboard/internal/api"
	"taskboard/internal/config"
	"taskboard/internal/infra"
	"taskboard/internal/usecase"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func apiCmd() *cobra.Command {
	var port int
	var command = &cobra.Command{
		Use:   "api",
		Short: "Start API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			setLogLevel(cfg.LogLevel)
			if cmd.Flags().Changed("port") {
				cfg.HTTP.Port = port
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = log.Logger.WithContext(ctx)

			log.Info().Msgf("API server using %s storage, threshold %d minutes", cfg.Storage.Driver, cfg.Lifecycle.ThresholdMinutes)

			p, err := infra.OpenPersister(ctx, cfg.Storage, cfg.Redis)
			if err != nil {
				return err
			}
			defer p.Close()

			store := usecase.NewTaskStore(ctx, p,
				usecase.WithThreshold(cfg.Lifecycle.ThresholdMinutes),
				usecase.WithSeed(cfg.Storage.Seed),
				usecase.WithReload(cfg.Storage.Reload),
			)

			// the sweeper must be stopped before the deferred Close
			sweepCtx, stopSweep := context.WithCancel(ctx)
			waitSweep := usecase.NewSweeper(store, cfg.Lifecycle.SweepInterval).Start(sweepCtx)
			defer func() {
				stopSweep()
				if err := waitSweep(); err != nil && !errors.Is(err, context.Canceled) {
					log.Ctx(ctx).Error().Err(err).Msg("sweeper stopped with error")
				}
			}()

			feed := usecase.NewFeed(cfg.Stream.Delay, cfg.Stream.FailureRate, nil)
			server := api.NewServer(store, feed, api.Options{
				Prefix:         cfg.HTTP.Prefix,
				AllowedOrigins: cfg.HTTP.AllowedOrigins,
			})
			return server.Run(ctx, cfg.HTTP.Port)
		},
	}

	command.Flags().IntVarP(&port, "port", "p", 5000, "Port to run the server on (overrides PORT)")
	return command
}
