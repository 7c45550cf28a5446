// Package events emits outbox lifecycle notifications on a local NATS
// bus so other processes on the device (dashboards, the watch command)
// can observe sync progress without polling the database.
package events

import (
	"context"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
)

// Event topic constants
const (
	TopicEnqueued = "caja.outbox.enqueued"
	TopicSynced   = "caja.outbox.synced"
	TopicFailed   = "caja.outbox.failed"
	TopicDead     = "caja.outbox.dead"
	TopicReset    = "caja.outbox.reset"
	TopicPruned   = "caja.outbox.pruned"
)

// Event types

type Enqueued struct {
	Event *model.Event `json:"event"`
}

type Synced struct {
	EventIDs []string `json:"event_ids"`
}

type Failed struct {
	EventID     string `json:"event_id"`
	Attempts    int    `json:"attempts"`
	LastError   string `json:"last_error"`
	NextRetryAt string `json:"next_retry_at,omitempty"`
}

type Dead struct {
	EventID   string `json:"event_id"`
	Attempts  int    `json:"attempts"`
	LastError string `json:"last_error"`
}

type Reset struct {
	Count int64 `json:"count"`
}

type Pruned struct {
	Count int64 `json:"count"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
