package backup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// memDestination collects writes in memory.
type memDestination struct {
	mu     sync.Mutex
	writes [][]byte
}

func (d *memDestination) Write(ctx context.Context, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes = append(d.writes, append([]byte(nil), data...))
	return nil
}

func (d *memDestination) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.writes)
}

func TestScheduler_RunsImmediatelyOnStart(t *testing.T) {
	eventRepo := newTestRepo(t)
	addEvent(t, eventRepo, 1)

	dest := &memDestination{}
	s := NewScheduler(eventRepo, []Destination{dest}, time.Hour, slog.Default())

	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for dest.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no backup written after Start")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if got := dest.count(); got != 1 {
		t.Fatalf("writes = %d, want 1 immediate backup", got)
	}
}

func TestScheduler_WritesAllDestinations(t *testing.T) {
	eventRepo := newTestRepo(t)
	addEvent(t, eventRepo, 1)

	path := filepath.Join(t.TempDir(), "backup.jsonl")
	mem := &memDestination{}
	file := NewFileDestination(path)
	s := NewScheduler(eventRepo, []Destination{mem, file}, time.Hour, slog.Default())

	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for mem.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no backup written after Start")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// The file write follows the memory write in the same pass.
	var data []byte
	for len(data) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("file destination wrote no data")
		}
		data, _ = os.ReadFile(path)
		time.Sleep(10 * time.Millisecond)
	}
}
