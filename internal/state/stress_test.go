package state

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sandeepkv93/weekplan/internal/schedule"
	"github.com/sandeepkv93/weekplan/internal/storage"
)

func TestStoreStressConcurrentMutations(t *testing.T) {
	blobs, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer blobs.Close()
	s, err := Open(t.Context(), schedule.Default(), blobs)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	ids := make([]string, 0)
	for _, tpl := range s.Week().Templates() {
		ids = append(ids, tpl.ID)
	}

	const workers = 8
	const perWorker = 40
	var firstMarks atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			ctx := context.Background()
			for i := 0; i < perWorker; i++ {
				id := ids[(w+i)%len(ids)]
				if i%2 == 0 {
					if _, err := s.ToggleDone(ctx, id); err != nil {
						t.Errorf("toggle %s: %v", id, err)
						return
					}
					continue
				}
				changed, err := s.MarkNotified(ctx, id)
				if err != nil {
					t.Errorf("mark %s: %v", id, err)
					return
				}
				if changed {
					firstMarks.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	notified := 0
	for _, task := range s.Tasks() {
		if task.Notified {
			notified++
		}
	}
	if int64(notified) != firstMarks.Load() {
		t.Fatalf("expected each task marked once, got %d marks for %d notified tasks", firstMarks.Load(), notified)
	}

	reopened, err := Open(t.Context(), schedule.Default(), blobs)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	for _, want := range s.Tasks() {
		got, err := reopened.Task(want.ID)
		if err != nil {
			t.Fatalf("task %s: %v", want.ID, err)
		}
		if got.Done != want.Done || got.Notified != want.Notified {
			t.Fatalf("task %s: persisted %+v, in memory %+v", want.ID, got.Overlay, want.Overlay)
		}
	}
}
