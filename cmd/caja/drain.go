package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/outbox"
)

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Push eligible events to the backend",
	Long: `Push eligible events to the backend. By default one batch is pushed
and the command exits; --follow keeps a drain loop running until
interrupted, the mode a kiosk terminal runs permanently.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireIdentity(); err != nil {
			return err
		}
		if cfg.BackendURL == "" {
			return fmt.Errorf("no backend URL configured: set CAJA_BACKEND_URL or run `caja init --backend-url`")
		}
		follow, _ := cmd.Flags().GetBool("follow")
		if follow && cfg.DrainInterval <= 0 {
			return fmt.Errorf("--follow requires CAJA_DRAIN_INTERVAL > 0")
		}

		transport := outbox.NewHTTPTransport(cfg.BackendURL, cfg.AuthToken)
		policy := outbox.RetryPolicy{
			Initial:     cfg.RetryInitial,
			Multiplier:  2,
			Max:         cfg.RetryMax,
			MaxAttempts: cfg.MaxAttempts,
		}
		drainer := outbox.NewDrainer(repos.Events(), transport, policy,
			cfg.DrainBatch, cfg.DrainInterval, queue, bus, logger)

		if follow {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			drainer.Start()
			<-ctx.Done()
			drainer.Stop()
			return nil
		}

		stats, err := drainer.DrainOnce(context.Background())
		if err != nil {
			return err
		}
		if stats.Offline {
			fmt.Println("Backend unreachable; events left pending")
			return nil
		}
		fmt.Printf("Pushed %d: %d synced, %d retrying, %d dead\n",
			stats.Pushed, stats.Synced, stats.Retrying, stats.Dead)
		return nil
	},
}

func init() {
	drainCmd.Flags().BoolP("follow", "f", false, "keep draining on the configured interval")
}
