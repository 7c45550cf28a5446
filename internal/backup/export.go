// Package backup exports the outbox as JSONL snapshots and ships them to
// local files or S3-compatible storage on a schedule.
package backup

import (
	"context"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version    string    `json:"version"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	EventCount int       `json:"event_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes every outbox event as JSONL to w, grouped by status
// in lifecycle order. Within a status, events keep the repository's
// created_at ordering, so a restore replays them in the order they were
// enqueued.
func ExportJSONL(ctx context.Context, eventRepo repo.EventRepository, w io.Writer) error {
	var all []*model.Event
	for _, status := range model.Statuses() {
		events, err := eventRepo.List(ctx, status, 0)
		if err != nil {
			return fmt.Errorf("list %s events: %w", status, err)
		}
		all = append(all, events...)
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(header{
		Version:    "1",
		Type:       "header",
		Timestamp:  time.Now().UTC(),
		EventCount: len(all),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, e := range all {
		if err := enc.Encode(record{Type: "event", Data: e}); err != nil {
			return fmt.Errorf("encode event %s: %w", e.EventID, err)
		}
	}

	return nil
}
