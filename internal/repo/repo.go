// Package repo defines the persistence contracts of the sync engine. Two
// interchangeable backends implement them: an embedded SQLite store and a
// PostgreSQL store. Callers only ever see these interfaces; the backend is
// chosen once at process start (see Repositories).
package repo

import (
	"context"
	"time"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
)

// Repository is the generic CRUD contract shared by every entity
// repository. Save has upsert semantics: insert or fully replace.
type Repository[T any, ID comparable] interface {
	FindByID(ctx context.Context, id ID) (*T, error)
	FindAll(ctx context.Context) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	// SaveAll is semantically equivalent to calling Save for each entity.
	// It is NOT atomic across the batch: a failure leaves earlier entities
	// committed.
	SaveAll(ctx context.Context, entities []*T) error
	Delete(ctx context.Context, id ID) error
	Count(ctx context.Context) (int64, error)
}

// ProductRepository adds the product-specific queries. Search matches
// name, SKU and barcode case-insensitively and orders results by name
// ascending on every backend; the query is matched literally, so % and _
// are not wildcards.
type ProductRepository interface {
	Repository[model.Product, string]
	FindByStoreID(ctx context.Context, storeID string) ([]*model.Product, error)
	FindByBarcode(ctx context.Context, storeID, barcode string) (*model.Product, error)
	Search(ctx context.Context, storeID, query string, limit int) ([]*model.Product, error)
}

// CustomerRepository adds the customer-specific queries. Search matches
// name, document ID and phone, ordered by name ascending.
type CustomerRepository interface {
	Repository[model.Customer, string]
	FindByStoreID(ctx context.Context, storeID string) ([]*model.Customer, error)
	Search(ctx context.Context, storeID, query string, limit int) ([]*model.Customer, error)
}

// EventRepository is the sole authority for event persistence and retry
// bookkeeping.
type EventRepository interface {
	// Add inserts one event. It returns ErrDuplicateEventID when the
	// event_id (or the (store_id, device_id, seq) slot) already exists;
	// callers treat that as success, and a prior terminal state is never
	// resurrected.
	Add(ctx context.Context, e *model.Event) error

	// AddBatch inserts events one by one. Each insert is atomic on its
	// own, but the batch as a whole is not: a failure does not undo
	// events already committed.
	AddBatch(ctx context.Context, events []*model.Event) error

	// GetPending returns up to limit events eligible for delivery:
	// pending events by created_at ascending first, then, only if room
	// remains, retrying events whose next_retry_at has elapsed, also by
	// created_at ascending.
	GetPending(ctx context.Context, limit int) ([]*model.Event, error)

	FindByEventID(ctx context.Context, eventID string) (*model.Event, error)

	// List returns up to limit events in the given status, ordered by
	// created_at ascending. A zero limit means no limit.
	List(ctx context.Context, status model.SyncStatus, limit int) ([]*model.Event, error)

	// MarkAsSynced transitions events to synced, stamping synced_at.
	// Idempotent: already-synced (or dead) events are left untouched.
	MarkAsSynced(ctx context.Context, eventIDs []string) error

	// MarkAsFailed records lastError and increments sync_attempts, moving
	// the event to dead when terminal is true, to retrying when a
	// nextRetryAt is supplied, and to failed otherwise. Terminal events
	// are never touched; a missing event returns ErrNotFound.
	MarkAsFailed(ctx context.Context, eventID, lastError string, nextRetryAt *time.Time, terminal bool) error

	// ResetFailedToPending recovers every failed event back to pending
	// with sync_attempts reset to zero. Manual lever only; it never
	// touches retrying, synced or dead events. Returns the number reset.
	ResetFailedToPending(ctx context.Context) (int64, error)

	// GetLastSeq returns the highest seq recorded for the device, or 0.
	GetLastSeq(ctx context.Context, storeID, deviceID string) (int64, error)

	// CountPending counts events in pending or retrying state.
	CountPending(ctx context.Context) (int64, error)

	// CountByStatus returns per-status event counts.
	CountByStatus(ctx context.Context) (map[model.SyncStatus]int64, error)

	// PruneSynced deletes synced events whose synced_at is older than
	// maxAge. It never deletes events in any other state. Returns the
	// number removed.
	PruneSynced(ctx context.Context, maxAge time.Duration) (int64, error)
}
