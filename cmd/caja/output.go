package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/ui"
)

func printEventJSON(e *model.Event) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printEventDetail(e *model.Event) {
	fmt.Printf("Event ID:  %s\n", ui.RenderAccent(e.EventID))
	fmt.Printf("Type:      %s\n", e.Type)
	fmt.Printf("Store:     %s\n", e.StoreID)
	fmt.Printf("Device:    %s\n", e.DeviceID)
	fmt.Printf("Seq:       %d\n", e.Seq)
	fmt.Printf("Status:    %s\n", ui.RenderStatus(e.SyncStatus))
	fmt.Printf("Attempts:  %d\n", e.SyncAttempts)
	fmt.Printf("Created:   %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"))
	if e.SyncedAt != nil {
		fmt.Printf("Synced:    %s\n", e.SyncedAt.Format("2006-01-02 15:04:05"))
	}
	if e.NextRetryAt != nil {
		fmt.Printf("Retry at:  %s\n", e.NextRetryAt.Format("2006-01-02 15:04:05"))
	}
	if e.LastError != "" {
		fmt.Printf("Error:     %s\n", ui.RenderMuted(e.LastError))
	}
	if len(e.VectorClock) > 0 {
		clock, _ := json.Marshal(e.VectorClock)
		fmt.Printf("Clock:     %s\n", clock)
	}
	if len(e.Payload) > 0 {
		fmt.Printf("Payload:   %s\n", e.Payload)
	}
}

func printEvents(events []*model.Event) {
	if jsonOutput {
		data, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
			return
		}
		fmt.Println(string(data))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EVENT ID\tSEQ\tTYPE\tSTATUS\tATTEMPTS\tCREATED\tNEXT RETRY")
	for _, e := range events {
		next := "-"
		if e.NextRetryAt != nil {
			next = e.NextRetryAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\t%s\n",
			e.EventID,
			e.Seq,
			e.Type,
			ui.RenderStatus(e.SyncStatus),
			e.SyncAttempts,
			e.CreatedAt.Format(time.RFC3339),
			next,
		)
	}
	w.Flush()
	fmt.Printf("\n%d event(s)\n", len(events))
}
