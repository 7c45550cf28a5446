package main

import (
	"context"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <event-id>",
	Short: "Show one event in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := repos.Events().FindByEventID(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printEventJSON(e)
		} else {
			printEventDetail(e)
		}
		return nil
	},
}
