package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List outbox events",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		pending, _ := cmd.Flags().GetBool("pending")

		ctx := context.Background()

		if pending {
			events, err := queue.Pending(ctx, limit)
			if err != nil {
				return err
			}
			printEvents(events)
			return nil
		}

		s := model.SyncStatus(status)
		if !s.IsValid() {
			return fmt.Errorf("unknown status %q", status)
		}
		events, err := repos.Events().List(ctx, s, limit)
		if err != nil {
			return err
		}
		printEvents(events)
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("status", "s", "pending", "filter by sync status")
	listCmd.Flags().Int("limit", 50, "maximum number of events to return")
	listCmd.Flags().Bool("pending", false, "show events eligible for the next drain (pending plus due retries)")
}
