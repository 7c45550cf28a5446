// Package outbox implements the durable event outbox: ordered enqueue,
// bounded-retry delivery and dead-lettering on top of the repo contracts.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/events"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/idgen"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo"
)

// Queue is the write side of the outbox. It mints the per-device
// sequence, the event idempotency key and the vector clock entry for
// every enqueued event.
type Queue struct {
	events   repo.EventRepository
	storeID  string
	deviceID string
	bus      events.Publisher
	logger   *slog.Logger
	now      func() time.Time

	// mu serializes enqueues: seq assignment reads the current maximum
	// and inserts the successor, which must not interleave.
	mu sync.Mutex
	// clock accumulates this device's own ticks plus whatever the backend
	// has reported via ObserveClock. Guarded by mu.
	clock model.VectorClock
}

// Compile-time check that the drainer can feed server clocks back here.
var _ ClockObserver = (*Queue)(nil)

// NewQueue builds a queue bound to one device identity. bus may be nil
// when no event bus is configured.
func NewQueue(eventRepo repo.EventRepository, storeID, deviceID string, bus events.Publisher, logger *slog.Logger) *Queue {
	if bus == nil {
		bus = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		events:   eventRepo,
		storeID:  storeID,
		deviceID: deviceID,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
	}
}

// Enqueue appends one event to the outbox and returns it with its
// assigned sequence number and idempotency key.
func (q *Queue) Enqueue(ctx context.Context, eventType string, payload json.RawMessage) (*model.Event, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.enqueueLocked(ctx, eventType, payload)
}

// EnqueueBatch appends events in order, assigning contiguous sequence
// numbers. A failure mid-batch leaves earlier events committed.
func (q *Queue) EnqueueBatch(ctx context.Context, eventTypes []string, payloads []json.RawMessage) ([]*model.Event, error) {
	if len(eventTypes) != len(payloads) {
		return nil, fmt.Errorf("enqueue batch: %d types but %d payloads", len(eventTypes), len(payloads))
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*model.Event, 0, len(eventTypes))
	for i := range eventTypes {
		e, err := q.enqueueLocked(ctx, eventTypes[i], payloads[i])
		if err != nil {
			return out, fmt.Errorf("enqueue batch item %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (q *Queue) enqueueLocked(ctx context.Context, eventType string, payload json.RawMessage) (*model.Event, error) {
	lastSeq, err := q.events.GetLastSeq(ctx, q.storeID, q.deviceID)
	if err != nil {
		return nil, fmt.Errorf("read last seq: %w", err)
	}

	eventID, err := idgen.NewEventID()
	if err != nil {
		return nil, err
	}

	seq := lastSeq + 1
	q.clock = q.clock.Tick(q.deviceID, seq)
	e := &model.Event{
		EventID:     eventID,
		StoreID:     q.storeID,
		DeviceID:    q.deviceID,
		Seq:         seq,
		Type:        eventType,
		Payload:     payload,
		VectorClock: q.clock.Clone(),
		SyncStatus:  model.StatusPending,
		CreatedAt:   q.now().UTC(),
	}

	if err := q.events.Add(ctx, e); err != nil {
		// A duplicate seq slot means another writer won the race despite
		// the mutex (a second process on the same database). The caller
		// can simply retry.
		if errors.Is(err, repo.ErrDuplicateEventID) {
			return nil, fmt.Errorf("seq %d already taken: %w", seq, err)
		}
		return nil, err
	}

	q.logger.Debug("event enqueued",
		"event_id", e.EventID, "type", e.Type, "seq", e.Seq)
	q.publish(ctx, events.TopicEnqueued, events.Enqueued{Event: e})
	return e, nil
}

// ObserveClock folds a clock reported by the backend into the device
// clock, so events enqueued afterwards carry the merged view. Entries
// only ever move forward.
func (q *Queue) ObserveClock(remote model.VectorClock) {
	if len(remote) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.clock = q.clock.Merge(remote)
}

// Pending returns up to limit events eligible for delivery right now.
func (q *Queue) Pending(ctx context.Context, limit int) ([]*model.Event, error) {
	return q.events.GetPending(ctx, limit)
}

// Stats returns the event count per sync status.
func (q *Queue) Stats(ctx context.Context) (map[model.SyncStatus]int64, error) {
	return q.events.CountByStatus(ctx)
}

// ResetFailed moves every failed event back to pending with a fresh
// retry budget. Dead events are not touched.
func (q *Queue) ResetFailed(ctx context.Context) (int64, error) {
	n, err := q.events.ResetFailedToPending(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		q.logger.Info("failed events reset to pending", "count", n)
		q.publish(ctx, events.TopicReset, events.Reset{Count: n})
	}
	return n, nil
}

// Prune deletes synced events older than maxAge and reports how many
// were removed.
func (q *Queue) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := q.events.PruneSynced(ctx, maxAge)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		q.logger.Info("synced events pruned", "count", n, "max_age", maxAge)
		q.publish(ctx, events.TopicPruned, events.Pruned{Count: n})
	}
	return n, nil
}

func (q *Queue) publish(ctx context.Context, topic string, payload any) {
	if err := q.bus.Publish(ctx, topic, payload); err != nil {
		// Bus notifications are best-effort; losing one never blocks the
		// outbox itself.
		q.logger.Warn("publish notification", "topic", topic, "error", err)
	}
}
