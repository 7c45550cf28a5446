package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetFailedCmd = &cobra.Command{
	Use:   "reset-failed",
	Short: "Move failed events back to pending with a fresh retry budget",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := queue.ResetFailed(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Reset %d event(s)\n", n)
		return nil
	},
}
