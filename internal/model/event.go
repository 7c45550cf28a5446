package model

import (
	"time"

	json "github.com/goccy/go-json"
)

// SyncStatus represents the delivery state of a queued event.
type SyncStatus string

const (
	StatusPending  SyncStatus = "pending"
	StatusRetrying SyncStatus = "retrying"
	StatusSynced   SyncStatus = "synced"
	StatusFailed   SyncStatus = "failed"
	StatusDead     SyncStatus = "dead"
)

// String returns the string representation of the status.
func (s SyncStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s SyncStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusRetrying, StatusSynced, StatusFailed, StatusDead:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
// Synced events are eventually pruned; dead events wait for an operator.
func (s SyncStatus) IsTerminal() bool {
	return s == StatusSynced || s == StatusDead
}

// CanTransitionTo reports whether moving from s to next is a legal
// forward transition:
//
//	pending  -> retrying | synced | failed | dead
//	retrying -> retrying | synced | failed | dead
//	failed   -> pending  (manual reset only)
//	synced, dead -> nothing
func (s SyncStatus) CanTransitionTo(next SyncStatus) bool {
	switch s {
	case StatusPending, StatusRetrying:
		switch next {
		case StatusRetrying, StatusSynced, StatusFailed, StatusDead:
			return true
		}
	case StatusFailed:
		return next == StatusPending
	}
	return false
}

// Statuses lists every sync status in lifecycle order.
func Statuses() []SyncStatus {
	return []SyncStatus{StatusPending, StatusRetrying, StatusSynced, StatusFailed, StatusDead}
}

// Event is one durable record of a domain mutation queued for later
// delivery. The identity fields (EventID, StoreID, DeviceID, Seq, Type,
// Payload, VectorClock, CreatedAt) are immutable after creation; only the
// sync-tracking fields change.
type Event struct {
	ID          int64           `json:"id,omitempty"` // backend auto key
	EventID     string          `json:"event_id"`
	StoreID     string          `json:"store_id"`
	DeviceID    string          `json:"device_id"`
	Seq         int64           `json:"seq"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	VectorClock VectorClock     `json:"vector_clock,omitempty"`

	SyncStatus   SyncStatus `json:"sync_status"`
	SyncAttempts int        `json:"sync_attempts"`
	CreatedAt    time.Time  `json:"created_at"`
	NextRetryAt  *time.Time `json:"next_retry_at,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	SyncedAt     *time.Time `json:"synced_at,omitempty"`
}

// Eligible reports whether the event may be handed to a delivery pass at
// the given instant: pending always, retrying once its retry time elapsed.
func (e *Event) Eligible(now time.Time) bool {
	switch e.SyncStatus {
	case StatusPending:
		return true
	case StatusRetrying:
		return e.NextRetryAt != nil && !e.NextRetryAt.After(now)
	}
	return false
}

// Well-known event types produced by the POS client. Types are extensible;
// the engine transports any non-empty string.
const (
	TypeStockReceived      = "inventory.stock_received"
	TypeStockAdjusted      = "inventory.stock_adjusted"
	TypeSaleCreated        = "sales.sale_created"
	TypeProductCreated     = "products.product_created"
	TypeProductUpdated     = "products.product_updated"
	TypePriceChanged       = "products.price_changed"
	TypeCustomerCreated    = "customers.customer_created"
	TypeDebtPaymentCreated = "customers.debt_payment_recorded"
)
