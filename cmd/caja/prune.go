package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete synced events older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		maxAge, _ := cmd.Flags().GetDuration("max-age")
		if maxAge == 0 {
			maxAge = cfg.Retention
		}
		n, err := queue.Prune(context.Background(), maxAge)
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d event(s)\n", n)
		return nil
	},
}

func init() {
	pruneCmd.Flags().Duration("max-age", 0, "retention window (default: CAJA_RETENTION)")
}
