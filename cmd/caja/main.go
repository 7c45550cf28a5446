// Command caja is the local sync engine CLI: it owns the durable event
// outbox on this device and drains it to the store backend.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/config"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/events"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/outbox"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo/backends"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/ui"
)

var (
	jsonOutput bool

	cfg    *config.Config
	repos  *repo.Repositories
	bus    events.Publisher
	queue  *outbox.Queue
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "caja",
	Short: "Offline-first event outbox for point-of-sale devices",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// `caja init` writes the profile the other commands depend on, so
		// it runs before any backend or identity exists.
		if cmd.Name() == "init" {
			return nil
		}

		repos, err = backends.Open(cfg)
		if err != nil {
			return err
		}

		bus = events.Publisher(&events.NoopPublisher{})
		if cfg.NATSURL != "" {
			p, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				// The bus is best-effort; a missing broker never blocks
				// the outbox.
				logger.Warn("event bus unavailable", "url", cfg.NATSURL, "err", err)
			} else {
				bus = p
			}
		}

		queue = outbox.NewQueue(repos.Events(), cfg.StoreID, cfg.DeviceID, bus, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if bus != nil {
			bus.Close()
		}
		if repos != nil {
			repos.Close()
		}
	},
}

// requireIdentity guards commands that mint or push events: they need the
// device identity written by `caja init`.
func requireIdentity() error {
	if cfg.StoreID == "" || cfg.DeviceID == "" {
		return fmt.Errorf("no device identity: run `caja init` first (or set CAJA_STORE_ID and CAJA_DEVICE_ID)")
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(drainCmd)
	rootCmd.AddCommand(resetFailedCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
