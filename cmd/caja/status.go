package main

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show outbox health and device identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		counts, err := queue.Stats(context.Background())
		if err != nil {
			return err
		}

		if jsonOutput {
			out := map[string]any{
				"backend":   repos.Backend(),
				"store_id":  cfg.StoreID,
				"device_id": cfg.DeviceID,
				"counts":    counts,
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Backend:   %s\n", repos.Backend())
		fmt.Printf("Store ID:  %s\n", cfg.StoreID)
		fmt.Printf("Device ID: %s\n", cfg.DeviceID)
		fmt.Println()
		for _, s := range model.Statuses() {
			// Pad before coloring so the ANSI escapes do not count
			// against the column width.
			label := fmt.Sprintf("%-10s", s.String())
			fmt.Printf("%s %d\n", ui.RenderStatusLabel(s, label), counts[s])
		}
		return nil
	},
}
