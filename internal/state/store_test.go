package state

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/sandeepkv93/weekplan/internal/model"
	"github.com/sandeepkv93/weekplan/internal/schedule"
	"github.com/sandeepkv93/weekplan/internal/storage"
)

type failingBlobs struct {
	storage.BlobStore
	putErr error
}

func (f failingBlobs) Put(context.Context, string, []byte) error { return f.putErr }

func newTestStore(t *testing.T) (*Store, storage.BlobStore) {
	t.Helper()
	blobs := storage.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	s, err := Open(t.Context(), schedule.Default(), blobs)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s, blobs
}

func TestToggleDonePersistsAndReloads(t *testing.T) {
	s, blobs := newTestStore(t)
	task, err := s.ToggleDone(t.Context(), "mon1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !task.Done {
		t.Fatal("expected task to be done")
	}

	reopened, err := Open(t.Context(), schedule.Default(), blobs)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Task("mon1")
	if err != nil {
		t.Fatalf("task: %v", err)
	}
	if !got.Done {
		t.Fatal("expected done to survive reload")
	}
}

func TestToggleDoneKeepsNotified(t *testing.T) {
	s, _ := newTestStore(t)
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if _, err := s.SetDateTime(t.Context(), "tue1", at); err != nil {
		t.Fatalf("set datetime: %v", err)
	}
	if changed, err := s.MarkNotified(t.Context(), "tue1"); err != nil || !changed {
		t.Fatalf("expected first mark to change state, got %v %v", changed, err)
	}
	for range 2 {
		if _, err := s.ToggleDone(t.Context(), "tue1"); err != nil {
			t.Fatalf("toggle: %v", err)
		}
		got, _ := s.Task("tue1")
		if !got.Notified {
			t.Fatal("expected notified to survive toggling done")
		}
	}
}

func TestMarkNotifiedIsOneShot(t *testing.T) {
	s, _ := newTestStore(t)
	if changed, _ := s.MarkNotified(t.Context(), "wed1"); !changed {
		t.Fatal("expected first mark to change state")
	}
	if changed, _ := s.MarkNotified(t.Context(), "wed1"); changed {
		t.Fatal("expected second mark to be a no-op")
	}
	if _, err := s.ClearDateTime(t.Context(), "wed1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ := s.Task("wed1")
	if !got.Notified {
		t.Fatal("expected notified to stay set")
	}
}

func TestMarkNotifiedIfChecksUnderLock(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.ToggleDone(t.Context(), "thu1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	notDone := func(o model.Overlay) bool { return !o.Done }
	task, changed, err := s.MarkNotifiedIf(t.Context(), "thu1", notDone)
	if err != nil || changed || task.Notified {
		t.Fatalf("expected done task to stay unmarked, got %+v %v %v", task.Overlay, changed, err)
	}
	task, changed, err = s.MarkNotifiedIf(t.Context(), "mon2", notDone)
	if err != nil || !changed || !task.Notified {
		t.Fatalf("expected open task to be marked, got %+v %v %v", task.Overlay, changed, err)
	}
}

func TestResetClearsOverlayAndSupersedesRequests(t *testing.T) {
	s, blobs := newTestStore(t)
	if _, err := s.ToggleDone(t.Context(), "mon1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := s.LastSaved(t.Context()); err != nil {
		t.Fatalf("expected a save time after a mutation, got %v", err)
	}
	ticket, err := s.Begin("prioritize")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	if err := s.Reset(t.Context()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(s.Overlay()) != 0 || s.Busy() {
		t.Fatalf("expected empty idle store, got %+v busy=%v", s.Overlay(), s.Busy())
	}
	if _, err := blobs.Get(t.Context(), DefaultKey); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected blob deleted, got %v", err)
	}
	if _, err := s.LastSaved(t.Context()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected no save time after reset, got %v", err)
	}
	if _, err := s.ApplyRankings(t.Context(), ticket, []model.Ranking{{ID: "mon1", Priority: 1, Reason: "r"}}); !errors.Is(err, ErrStale) {
		t.Fatalf("expected in-flight response to be stale, got %v", err)
	}
	if err := s.Reset(t.Context()); err != nil {
		t.Fatalf("second reset should be a no-op, got %v", err)
	}
}

func TestClearDateTimeRemovesOnlyThatField(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := t.Context()
	if _, err := s.ToggleDone(ctx, "fri1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := s.SetDateTime(ctx, "fri1", time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.ClearDateTime(ctx, "fri1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got.DateTime != nil || !got.Done {
		t.Fatalf("unexpected task after clear: %+v", got.Overlay)
	}
}

func TestSetDateTimeRejectsZeroAndUnknown(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.SetDateTime(t.Context(), "mon1", time.Time{}); !errors.Is(err, model.ErrInvalidDateTime) {
		t.Fatalf("expected ErrInvalidDateTime, got %v", err)
	}
	if _, err := s.ToggleDone(t.Context(), "nope"); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
	if len(s.Overlay()) != 0 {
		t.Fatalf("expected no overlay entries, got %v", s.Overlay())
	}
}

func TestMalformedBlobLoadsEmpty(t *testing.T) {
	blobs := storage.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	if err := blobs.Put(t.Context(), DefaultKey, []byte("{{{")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := Open(t.Context(), schedule.Default(), blobs)
	if err != nil {
		t.Fatalf("expected malformed blob to be tolerated, got %v", err)
	}
	if len(s.Overlay()) != 0 {
		t.Fatalf("expected empty overlay, got %v", s.Overlay())
	}
}

func TestInvalidEntryIsSkippedOnLoad(t *testing.T) {
	blobs := storage.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	seed := `{"mon1":{"done":true,"extra":1},"mon2":{"priority":-4}}`
	if err := blobs.Put(t.Context(), DefaultKey, []byte(seed)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := Open(t.Context(), schedule.Default(), blobs, WithKey(DefaultKey))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	overlay := s.Overlay()
	if !overlay["mon1"].Done {
		t.Fatal("expected mon1 to load despite unknown field")
	}
	if _, ok := overlay["mon2"]; ok {
		t.Fatal("expected invalid mon2 entry to be dropped")
	}
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	inner := storage.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	s, err := Open(t.Context(), schedule.Default(), failingBlobs{BlobStore: inner, putErr: errors.New("disk full")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.ToggleDone(t.Context(), "mon1"); err == nil {
		t.Fatal("expected persist error")
	}
	got, _ := s.Task("mon1")
	if !got.Done {
		t.Fatal("expected in-memory mutation to be kept")
	}
}

func TestBeginIsExclusive(t *testing.T) {
	s, _ := newTestStore(t)
	first, err := s.Begin("prioritize")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if first.RequestID == "" {
		t.Fatal("expected request id")
	}
	if _, err := s.Begin("suggest"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	s.Release(first)
	if s.Busy() {
		t.Fatal("expected slot to be free after release")
	}
	if _, err := s.Begin("suggest"); err != nil {
		t.Fatalf("expected begin after release, got %v", err)
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := t.Context()
	old, _ := s.Begin("prioritize")
	s.Release(old)
	current, _ := s.Begin("prioritize")

	rankings := []model.Ranking{{ID: "mon1", Priority: 1, Reason: "old"}}
	if _, err := s.ApplyRankings(ctx, old, rankings); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if len(s.Overlay()) != 0 {
		t.Fatal("expected stale response to leave overlay untouched")
	}
	if !s.Busy() {
		t.Fatal("expected current request to stay outstanding")
	}
	n, err := s.ApplyRankings(ctx, current, []model.Ranking{{ID: "mon1", Priority: 2, Reason: "new"}})
	if err != nil || n != 1 {
		t.Fatalf("expected current response to apply, got %d %v", n, err)
	}
	if s.Busy() {
		t.Fatal("expected apply to release the slot")
	}
	got, _ := s.Task("mon1")
	if got.SortPriority() != 2 || got.ReasonText() != "new" {
		t.Fatalf("unexpected task: %+v", got.Overlay)
	}
}

func TestApplySuggestionsThroughStore(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := t.Context()
	if _, err := s.ToggleDone(ctx, "thu2"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	ticket, _ := s.Begin("suggest")
	at := time.Date(2026, 3, 5, 15, 0, 0, 0, time.UTC)
	n, err := s.ApplySuggestions(ctx, ticket, []model.Suggestion{
		{ID: "thu2", Time: at, Reasoning: "lectures run in the afternoon"},
		{ID: "ghost", Time: at, Reasoning: "ignored"},
	})
	if err != nil || n != 1 {
		t.Fatalf("expected one suggestion applied, got %d %v", n, err)
	}
	got, _ := s.Task("thu2")
	if !got.Done || got.DateTime == nil || !got.DateTime.Equal(at) {
		t.Fatalf("unexpected overlay: %+v", got.Overlay)
	}
	if _, ok := s.Overlay()["ghost"]; ok {
		t.Fatal("unknown id must not create an entry")
	}
}

func TestTasksReturnsCopies(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.SetDateTime(t.Context(), "mon1", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("set: %v", err)
	}
	tasks := s.Tasks()
	*tasks[0].DateTime = time.Time{}
	got, _ := s.Task("mon1")
	if got.DateTime.IsZero() {
		t.Fatal("mutating a returned task leaked into the store")
	}
	if !reflect.DeepEqual(len(tasks), len(schedule.Default().Templates())) {
		t.Fatalf("expected one task per template, got %d", len(tasks))
	}
}
