package main

import (
	"context"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <type>",
	Short: "Enqueue an event into the outbox",
	Long: `Enqueue an event into the outbox. The payload is read from --payload
or, when the flag is absent, from stdin. It must be valid JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireIdentity(); err != nil {
			return err
		}
		eventType := args[0]

		payload, _ := cmd.Flags().GetString("payload")
		var raw json.RawMessage
		if payload != "" {
			raw = json.RawMessage(payload)
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read payload from stdin: %w", err)
			}
			raw = json.RawMessage(data)
		}

		e, err := queue.Enqueue(context.Background(), eventType, raw)
		if err != nil {
			return err
		}

		if jsonOutput {
			printEventJSON(e)
		} else {
			fmt.Printf("Enqueued %s (seq %d)\n", e.EventID, e.Seq)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringP("payload", "p", "", "event payload as a JSON string")
}
