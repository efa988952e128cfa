package cmd

import (
	"taskboard/internal/worker"
	"time"

	"github.com/spf13/cobra"
)

func workerCmd() *cobra.Command {
	var interval time.Duration

	var command = &cobra.Command{
		Use:   "worker",
		Short: "Start the expiry sweeper against a shared store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return worker.Run(worker.Config{Interval: interval})
		},
	}

	command.Flags().DurationVar(&interval, "interval", 0, "Sweep interval (defaults to SWEEP_INTERVAL)")

	return command
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run a single expiry sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return worker.Run(worker.Config{Once: true})
		},
	}
}
