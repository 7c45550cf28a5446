package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/events"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo"
)

// ClockObserver receives vector clocks reported by the backend in push
// responses.
type ClockObserver interface {
	ObserveClock(remote model.VectorClock)
}

// Drainer periodically pushes eligible events to the backend and applies
// the per-event verdicts: accepted events become synced, rejected or
// failed events consume retry budget and eventually dead-letter.
type Drainer struct {
	events    repo.EventRepository
	transport Transport
	policy    RetryPolicy
	batch     int
	interval  time.Duration
	clocks    ClockObserver
	bus       events.Publisher
	logger    *slog.Logger
	now       func() time.Time

	// draining guarantees a single in-flight drain per process; a tick
	// that fires while a slow drain is running is skipped, not queued.
	draining sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// DrainStats summarizes one drain pass.
type DrainStats struct {
	Pushed   int
	Synced   int
	Retrying int
	Dead     int
	Offline  bool
}

// NewDrainer builds a drainer. clocks, bus and logger may be nil: clocks
// is only consulted when the backend reports a clock, and nil bus/logger
// fall back to no-op and default.
func NewDrainer(eventRepo repo.EventRepository, transport Transport, policy RetryPolicy, batch int, interval time.Duration, clocks ClockObserver, bus events.Publisher, logger *slog.Logger) *Drainer {
	if bus == nil {
		bus = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if batch <= 0 {
		batch = 50
	}
	// time.NewTicker panics on a non-positive interval.
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Drainer{
		events:    eventRepo,
		transport: transport,
		policy:    policy,
		batch:     batch,
		interval:  interval,
		clocks:    clocks,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// Start begins the periodic drain loop. It drains once immediately, then
// on each tick.
func (d *Drainer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(ctx)
	}()
}

// Stop cancels the loop and waits for any in-flight drain to finish.
func (d *Drainer) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

func (d *Drainer) run(ctx context.Context) {
	if _, err := d.DrainOnce(ctx); err != nil {
		d.logger.Error("drain failed", "err", err)
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.DrainOnce(ctx); err != nil {
				d.logger.Error("drain failed", "err", err)
			}
		}
	}
}

// DrainOnce pushes one batch of eligible events and applies the result.
// It returns without error when there is nothing to push.
func (d *Drainer) DrainOnce(ctx context.Context) (DrainStats, error) {
	d.draining.Lock()
	defer d.draining.Unlock()

	var stats DrainStats

	batch, err := d.events.GetPending(ctx, d.batch)
	if err != nil {
		return stats, fmt.Errorf("load pending events: %w", err)
	}
	if len(batch) == 0 {
		return stats, nil
	}
	stats.Pushed = len(batch)

	result, err := d.transport.Push(ctx, batch)
	if err != nil {
		if errors.Is(err, ErrOffline) {
			// Nothing was delivered; the events stay exactly as they
			// were and the next drain will retry them for free.
			stats.Offline = true
			d.logger.Debug("backend unreachable, batch deferred",
				"events", len(batch))
			return stats, nil
		}
		// The push failed after reaching the backend; every event in the
		// batch burns one attempt.
		for _, e := range batch {
			d.failEvent(ctx, e, err.Error(), false, &stats)
		}
		return stats, nil
	}

	if d.clocks != nil && len(result.Clock) > 0 {
		d.clocks.ObserveClock(result.Clock)
	}

	if len(result.Accepted) > 0 {
		if err := d.events.MarkAsSynced(ctx, result.Accepted); err != nil {
			return stats, fmt.Errorf("mark synced: %w", err)
		}
		stats.Synced = len(result.Accepted)
		d.publish(ctx, events.TopicSynced, events.Synced{EventIDs: result.Accepted})
	}

	byID := make(map[string]*model.Event, len(batch))
	for _, e := range batch {
		byID[e.EventID] = e
	}
	for _, rej := range result.Rejected {
		e, ok := byID[rej.EventID]
		if !ok {
			d.logger.Warn("backend rejected unknown event", "event_id", rej.EventID)
			continue
		}
		reason := rej.Code
		if rej.Message != "" {
			reason = rej.Code + ": " + rej.Message
		}
		d.failEvent(ctx, e, reason, rej.Terminal, &stats)
	}

	d.logger.Info("drain completed",
		"pushed", stats.Pushed, "synced", stats.Synced,
		"retrying", stats.Retrying, "dead", stats.Dead)
	return stats, nil
}

// failEvent records one failed attempt for e, scheduling a retry or
// dead-lettering according to the policy.
func (d *Drainer) failEvent(ctx context.Context, e *model.Event, reason string, terminal bool, stats *DrainStats) {
	attempts := e.SyncAttempts + 1
	dead := terminal || d.policy.Exhausted(attempts)

	var retryAt *time.Time
	if !dead {
		retryAt = d.policy.NextRetryAt(d.now(), attempts)
	}

	if err := d.events.MarkAsFailed(ctx, e.EventID, reason, retryAt, dead); err != nil {
		d.logger.Error("mark failed", "event_id", e.EventID, "err", err)
		return
	}

	if dead {
		stats.Dead++
		d.logger.Warn("event dead-lettered",
			"event_id", e.EventID, "attempts", attempts, "reason", reason)
		d.publish(ctx, events.TopicDead, events.Dead{
			EventID: e.EventID, Attempts: attempts, LastError: reason,
		})
		return
	}

	stats.Retrying++
	next := ""
	if retryAt != nil {
		next = retryAt.UTC().Format(time.RFC3339)
	}
	d.publish(ctx, events.TopicFailed, events.Failed{
		EventID: e.EventID, Attempts: attempts, LastError: reason, NextRetryAt: next,
	})
}

func (d *Drainer) publish(ctx context.Context, topic string, payload any) {
	if err := d.bus.Publish(ctx, topic, payload); err != nil {
		d.logger.Warn("publish notification", "topic", topic, "error", err)
	}
}
