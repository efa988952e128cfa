package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"taskboard/internal/client"
	"taskboard/internal/config"
	"taskboard/internal/domain"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	var url string
	var command = &cobra.Command{
		Use:   "watch",
		Short: "Mirror the task board from a running API and log changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			setLogLevel(cfg.LogLevel)
			if url != "" {
				cfg.Client.BaseURL = url
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = log.Logger.WithContext(ctx)

			cli := client.New(cfg.Client)
			board := client.NewBoard(cli, cfg.Lifecycle.ThresholdMinutes,
				client.WithIntervals(cfg.Client.PollInterval, cfg.Client.EvaluateInterval),
			)
			board.OnExpire = func(t domain.Task) {
				log.Info().Str("id", t.ID).Str("reason", string(t.ExpiredReason)).Msgf("task %q expired locally", t.Title)
			}

			go logSummaries(ctx, board, cfg.Client.PollInterval)

			if err := board.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	command.Flags().StringVar(&url, "url", "", "API base URL (overrides API_URL)")
	return command
}

func logSummaries(ctx context.Context, board *client.Board, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s := board.Summary()
		ev := log.Info().Int("total", s.Total)
		for _, st := range domain.Statuses {
			ev = ev.Int(string(st), s.ByStatus[st])
		}
		ev.Msg("board")
	}
}
