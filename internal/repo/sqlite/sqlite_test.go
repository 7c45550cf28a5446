package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
)

// newTestStore opens a fresh on-disk database in a temp dir. The real
// sqlite driver runs the real migrations, so these tests exercise the
// exact schema production uses.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "caja.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// fixedRepo binds the event repo to a fixed clock so retry-due checks are
// deterministic.
func fixedRepo(store *Store, now time.Time) *EventRepo {
	return &EventRepo{db: store.db, now: func() time.Time { return now }}
}

func testEvent(eventID string, seq int64) *model.Event {
	return &model.Event{
		EventID:    eventID,
		StoreID:    "store-1",
		DeviceID:   "dev-1",
		Seq:        seq,
		Type:       model.TypeSaleCreated,
		Payload:    json.RawMessage(`{"total_bs":250.5}`),
		SyncStatus: model.StatusPending,
		CreatedAt:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC).Add(time.Duration(seq) * time.Second),
	}
}

func TestOpen_AppliesMigrations(t *testing.T) {
	store := newTestStore(t)

	var n int
	err := store.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('events', 'products', 'customers')`,
	).Scan(&n)
	if err != nil {
		t.Fatalf("query schema: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 tables, got %d", n)
	}
}

func TestOpen_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caja.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	store.Close()
}

func TestEventRepo_AddAssignsRowID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	e := testEvent("evt-1", 1)
	if err := store.Events().Add(ctx, e); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if e.ID == 0 {
		t.Error("Add should populate the auto-increment ID")
	}
}

func TestEventRepo_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	e := testEvent("evt-rt", 1)
	e.VectorClock = model.VectorClock{"dev-1": 1}
	if err := store.Events().Add(ctx, e); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := store.Events().FindByEventID(ctx, "evt-rt")
	if err != nil {
		t.Fatalf("FindByEventID: %v", err)
	}
	if got.StoreID != e.StoreID || got.DeviceID != e.DeviceID || got.Seq != e.Seq || got.Type != e.Type {
		t.Errorf("identity fields mangled: got %+v", got)
	}
	if got.SyncStatus != model.StatusPending || got.SyncAttempts != 0 {
		t.Errorf("sync fields: got status=%s attempts=%d", got.SyncStatus, got.SyncAttempts)
	}
	if !got.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("created_at: got %v, want %v", got.CreatedAt, e.CreatedAt)
	}
	if got.VectorClock["dev-1"] != 1 {
		t.Errorf("vector clock: got %v", got.VectorClock)
	}
	var payload map[string]float64
	if err := json.Unmarshal(got.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["total_bs"] != 250.5 {
		t.Errorf("payload: got %v", payload)
	}
}
