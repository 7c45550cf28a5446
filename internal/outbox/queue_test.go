package outbox

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/events"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo/sqlite"
)

// newTestRepo opens a real sqlite-backed event repository so queue and
// drainer tests run against the same semantics production sees.
func newTestRepo(t *testing.T) repo.EventRepository {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "caja.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store.Events()
}

// capturingBus records every published notification.
type capturingBus struct {
	mu     sync.Mutex
	topics []string
}

func (b *capturingBus) Publish(ctx context.Context, topic string, event any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = append(b.topics, topic)
	return nil
}

func (b *capturingBus) Close() error { return nil }

func (b *capturingBus) published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.topics...)
}

func TestQueue_EnqueueAssignsContiguousSeqs(t *testing.T) {
	q := NewQueue(newTestRepo(t), "store-1", "dev-1", nil, nil)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		e, err := q.Enqueue(ctx, model.TypeSaleCreated, json.RawMessage(`{"n":1}`))
		if err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
		if e.Seq != want {
			t.Errorf("seq = %d, want %d", e.Seq, want)
		}
		if e.EventID == "" {
			t.Error("event ID not minted")
		}
		if e.SyncStatus != model.StatusPending {
			t.Errorf("status = %s, want pending", e.SyncStatus)
		}
	}
}

func TestQueue_EnqueueStampsVectorClock(t *testing.T) {
	q := NewQueue(newTestRepo(t), "store-1", "dev-1", nil, nil)

	e, err := q.Enqueue(context.Background(), model.TypeSaleCreated, nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if e.VectorClock["dev-1"] != e.Seq {
		t.Errorf("clock[dev-1] = %d, want %d", e.VectorClock["dev-1"], e.Seq)
	}
}

func TestQueue_ClockAccumulatesAcrossEnqueues(t *testing.T) {
	q := NewQueue(newTestRepo(t), "store-1", "dev-1", nil, nil)
	ctx := context.Background()

	first, err := q.Enqueue(ctx, model.TypeSaleCreated, nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	second, err := q.Enqueue(ctx, model.TypeSaleCreated, nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if second.VectorClock["dev-1"] != 2 {
		t.Errorf("second clock[dev-1] = %d, want 2", second.VectorClock["dev-1"])
	}
	// Each event holds its own snapshot; later ticks never reach back.
	if first.VectorClock["dev-1"] != 1 {
		t.Errorf("first clock[dev-1] = %d, later enqueue leaked in", first.VectorClock["dev-1"])
	}
}

func TestQueue_ObserveClockFlowsIntoLaterEvents(t *testing.T) {
	q := NewQueue(newTestRepo(t), "store-1", "dev-1", nil, nil)
	ctx := context.Background()

	before, err := q.Enqueue(ctx, model.TypeSaleCreated, nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	q.ObserveClock(model.VectorClock{"dev-2": 9})

	after, err := q.Enqueue(ctx, model.TypeSaleCreated, nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if after.VectorClock["dev-2"] != 9 {
		t.Errorf("clock[dev-2] = %d, want 9", after.VectorClock["dev-2"])
	}
	if after.VectorClock["dev-1"] != 2 {
		t.Errorf("clock[dev-1] = %d, want 2", after.VectorClock["dev-1"])
	}
	if _, ok := before.VectorClock["dev-2"]; ok {
		t.Error("observed clock leaked into an already-enqueued event")
	}
}

func TestQueue_ObserveClockNeverRegressesOwnEntry(t *testing.T) {
	q := NewQueue(newTestRepo(t), "store-1", "dev-1", nil, nil)
	ctx := context.Background()

	if _, err := q.Enqueue(ctx, model.TypeSaleCreated, nil); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := q.Enqueue(ctx, model.TypeSaleCreated, nil); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// A stale report of our own progress is ignored.
	q.ObserveClock(model.VectorClock{"dev-1": 1})

	e, err := q.Enqueue(ctx, model.TypeSaleCreated, nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if e.VectorClock["dev-1"] != 3 {
		t.Errorf("clock[dev-1] = %d, want 3", e.VectorClock["dev-1"])
	}
}

func TestQueue_EnqueueRejectsInvalidPayload(t *testing.T) {
	q := NewQueue(newTestRepo(t), "store-1", "dev-1", nil, nil)

	_, err := q.Enqueue(context.Background(), model.TypeSaleCreated, json.RawMessage(`{broken`))
	if err == nil {
		t.Fatal("expected a validation error for malformed payload")
	}
}

func TestQueue_SeqSurvivesRestart(t *testing.T) {
	eventRepo := newTestRepo(t)
	ctx := context.Background()

	q1 := NewQueue(eventRepo, "store-1", "dev-1", nil, nil)
	if _, err := q1.Enqueue(ctx, model.TypeSaleCreated, nil); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := q1.Enqueue(ctx, model.TypeSaleCreated, nil); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// A new queue over the same repository picks up where the old one
	// stopped, the restart case for a device process.
	q2 := NewQueue(eventRepo, "store-1", "dev-1", nil, nil)
	e, err := q2.Enqueue(ctx, model.TypeSaleCreated, nil)
	if err != nil {
		t.Fatalf("Enqueue after restart: %v", err)
	}
	if e.Seq != 3 {
		t.Errorf("seq after restart = %d, want 3", e.Seq)
	}
}

func TestQueue_EnqueueBatch(t *testing.T) {
	q := NewQueue(newTestRepo(t), "store-1", "dev-1", nil, nil)

	got, err := q.EnqueueBatch(context.Background(),
		[]string{model.TypeSaleCreated, model.TypeStockAdjusted},
		[]json.RawMessage{json.RawMessage(`{"a":1}`), json.RawMessage(`{"b":2}`)},
	)
	if err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}
	if len(got) != 2 || got[0].Seq != 1 || got[1].Seq != 2 {
		t.Fatalf("batch seqs = %v", []int64{got[0].Seq, got[1].Seq})
	}

	_, err = q.EnqueueBatch(context.Background(), []string{"x"}, nil)
	if err == nil {
		t.Fatal("mismatched batch lengths should error")
	}
}

func TestQueue_ConcurrentEnqueue(t *testing.T) {
	q := NewQueue(newTestRepo(t), "store-1", "dev-1", nil, nil)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := q.Enqueue(ctx, model.TypeSaleCreated, nil); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Enqueue: %v", err)
	}

	events, err := q.Pending(ctx, n+1)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(events) != n {
		t.Fatalf("%d events enqueued, want %d", len(events), n)
	}
	seen := map[int64]bool{}
	for _, e := range events {
		if seen[e.Seq] {
			t.Fatalf("duplicate seq %d", e.Seq)
		}
		seen[e.Seq] = true
	}
}

func TestQueue_PublishesNotifications(t *testing.T) {
	bus := &capturingBus{}
	q := NewQueue(newTestRepo(t), "store-1", "dev-1", bus, nil)
	ctx := context.Background()

	if _, err := q.Enqueue(ctx, model.TypeSaleCreated, nil); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	topics := bus.published()
	if len(topics) != 1 || topics[0] != events.TopicEnqueued {
		t.Errorf("published = %v, want [%s]", topics, events.TopicEnqueued)
	}
}

func TestQueue_ResetFailed(t *testing.T) {
	eventRepo := newTestRepo(t)
	bus := &capturingBus{}
	q := NewQueue(eventRepo, "store-1", "dev-1", bus, nil)
	ctx := context.Background()

	e, err := q.Enqueue(ctx, model.TypeSaleCreated, nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := eventRepo.MarkAsFailed(ctx, e.EventID, "boom", nil, false); err != nil {
		t.Fatalf("MarkAsFailed: %v", err)
	}

	n, err := q.ResetFailed(ctx)
	if err != nil {
		t.Fatalf("ResetFailed: %v", err)
	}
	if n != 1 {
		t.Fatalf("reset %d, want 1", n)
	}

	found := false
	for _, topic := range bus.published() {
		if topic == events.TopicReset {
			found = true
		}
	}
	if !found {
		t.Error("reset notification not published")
	}
}

func TestQueue_Stats(t *testing.T) {
	q := NewQueue(newTestRepo(t), "store-1", "dev-1", nil, nil)
	ctx := context.Background()

	if _, err := q.Enqueue(ctx, model.TypeSaleCreated, nil); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	counts, err := q.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if counts[model.StatusPending] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestQueue_Prune(t *testing.T) {
	eventRepo := newTestRepo(t)
	q := NewQueue(eventRepo, "store-1", "dev-1", nil, nil)
	ctx := context.Background()

	e, err := q.Enqueue(ctx, model.TypeSaleCreated, nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := eventRepo.MarkAsSynced(ctx, []string{e.EventID}); err != nil {
		t.Fatalf("MarkAsSynced: %v", err)
	}

	// Zero retention prunes everything already synced.
	time.Sleep(10 * time.Millisecond)
	n, err := q.Prune(ctx, 0)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
}
