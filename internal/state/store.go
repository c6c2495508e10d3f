package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/weekplan/internal/model"
	"github.com/sandeepkv93/weekplan/internal/schedule"
	"github.com/sandeepkv93/weekplan/internal/storage"
)

// DefaultKey is the storage key holding the serialized overlay.
const DefaultKey = "schedule-ai-tasks"

var (
	ErrUnknownTask = errors.New("state: unknown task")
	ErrBusy        = errors.New("state: an AI request is already in progress")
	ErrStale       = errors.New("state: response superseded by a newer request")
)

// Ticket identifies one outstanding AI request.
type Ticket struct {
	Op        string
	Seq       uint64
	RequestID string
}

// Store owns the overlay for one week and mirrors every change to a BlobStore.
type Store struct {
	mu      sync.Mutex
	week    schedule.Week
	blobs   storage.BlobStore
	key     string
	logger  *slog.Logger
	overlay map[string]model.Overlay

	seq     uint64
	pending *Ticket
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open builds a store and loads the persisted overlay. A missing or malformed
// blob yields an empty overlay; only storage I/O errors are returned.
func Open(ctx context.Context, week schedule.Week, blobs storage.BlobStore, opts ...Option) (*Store, error) {
	if blobs == nil {
		return nil, errors.New("state: nil blob store")
	}
	s := &Store{
		week:    week,
		blobs:   blobs,
		key:     DefaultKey,
		logger:  slog.New(slog.DiscardHandler),
		overlay: make(map[string]model.Overlay),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	raw, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug("no persisted overlay", "key", s.key)
			return nil
		}
		return fmt.Errorf("load overlay: %w", err)
	}
	overlay, skipped, err := decodeOverlay(raw)
	if err != nil {
		s.logger.Warn("discarding malformed overlay", "key", s.key, "error", err)
		return nil
	}
	for _, id := range skipped {
		s.logger.Warn("discarding invalid overlay entry", "id", id)
	}
	s.overlay = overlay
	attrs := []any{"key", s.key, "entries", len(overlay)}
	if saved, err := s.LastSaved(ctx); err == nil {
		attrs = append(attrs, "saved_at", saved)
	}
	s.logger.Debug("loaded overlay", attrs...)
	return nil
}

// LastSaved reports when the overlay was last persisted. It returns
// storage.ErrNotFound when nothing is stored or the store keeps no times.
func (s *Store) LastSaved(ctx context.Context) (time.Time, error) {
	stamped, ok := s.blobs.(storage.Timestamped)
	if !ok {
		return time.Time{}, storage.ErrNotFound
	}
	return stamped.UpdatedAt(ctx, s.key)
}

// Reset drops every overlay entry and deletes the persisted blob. Any AI
// request in flight is superseded and its response will be discarded.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = make(map[string]model.Overlay)
	s.seq++
	s.pending = nil
	if err := s.blobs.Delete(ctx, s.key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("reset overlay: %w", err)
	}
	s.logger.Info("overlay reset", "key", s.key)
	return nil
}

func (s *Store) Week() schedule.Week {
	return s.week
}

// Tasks returns the merged week in template order.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Merge(s.week.Days, cloneOverlay(s.overlay))
}

func (s *Store) Task(id string) (model.Task, error) {
	tpl, day, ok := s.week.Lookup(id)
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %q", ErrUnknownTask, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Task{Template: tpl, Day: day, Overlay: cloneEntry(s.overlay[id])}, nil
}

// Overlay returns a copy of the current overlay mapping.
func (s *Store) Overlay() map[string]model.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOverlay(s.overlay)
}

func (s *Store) ToggleDone(ctx context.Context, id string) (model.Task, error) {
	return s.mutate(ctx, id, func(o *model.Overlay) bool {
		o.Done = !o.Done
		return true
	})
}

func (s *Store) SetDateTime(ctx context.Context, id string, at time.Time) (model.Task, error) {
	if at.IsZero() {
		return model.Task{}, fmt.Errorf("%w: zero time", model.ErrInvalidDateTime)
	}
	return s.mutate(ctx, id, func(o *model.Overlay) bool {
		o.DateTime = model.TimePtr(at)
		return true
	})
}

func (s *Store) ClearDateTime(ctx context.Context, id string) (model.Task, error) {
	return s.mutate(ctx, id, func(o *model.Overlay) bool {
		if o.DateTime == nil {
			return false
		}
		o.DateTime = nil
		return true
	})
}

// MarkNotified sets the notified flag. It reports false when the flag was
// already set; the flag is never cleared.
func (s *Store) MarkNotified(ctx context.Context, id string) (bool, error) {
	_, changed, err := s.MarkNotifiedIf(ctx, id, nil)
	return changed, err
}

// MarkNotifiedIf is MarkNotified gated by ok, evaluated against the entry
// under the store lock. A nil ok always accepts.
func (s *Store) MarkNotifiedIf(ctx context.Context, id string, ok func(model.Overlay) bool) (model.Task, bool, error) {
	changed := false
	task, err := s.mutate(ctx, id, func(o *model.Overlay) bool {
		if o.Notified || (ok != nil && !ok(*o)) {
			return false
		}
		o.Notified = true
		changed = true
		return true
	})
	return task, changed, err
}

func (s *Store) mutate(ctx context.Context, id string, fn func(*model.Overlay) bool) (model.Task, error) {
	tpl, day, ok := s.week.Lookup(id)
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %q", ErrUnknownTask, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := cloneEntry(s.overlay[id])
	changed := fn(&entry)
	task := model.Task{Template: tpl, Day: day, Overlay: cloneEntry(entry)}
	if !changed {
		return task, nil
	}
	s.overlay[id] = entry
	return task, s.persistLocked(ctx)
}

// Begin reserves the single AI request slot.
func (s *Store) Begin(op string) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return Ticket{}, fmt.Errorf("%w: %s", ErrBusy, s.pending.Op)
	}
	s.seq++
	t := Ticket{Op: op, Seq: s.seq, RequestID: uuid.NewString()}
	s.pending = &t
	s.logger.Debug("ai request started", "op", op, "seq", t.Seq, "request_id", t.RequestID)
	return t, nil
}

// Release frees the request slot without applying anything, as after a
// failed call. Releasing a superseded ticket is a no-op.
func (s *Store) Release(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil && s.pending.Seq == t.Seq {
		s.pending = nil
	}
}

func (s *Store) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// ApplyRankings merges a prioritize response into the current overlay and
// releases the ticket. It returns the number of tasks updated.
func (s *Store) ApplyRankings(ctx context.Context, t Ticket, rankings []model.Ranking) (int, error) {
	return s.apply(ctx, t, func(current map[string]model.Overlay) (map[string]model.Overlay, int) {
		return ApplyRankings(current, s.known, rankings)
	})
}

// ApplySuggestions merges a suggest-times response; see ApplyRankings.
func (s *Store) ApplySuggestions(ctx context.Context, t Ticket, suggestions []model.Suggestion) (int, error) {
	return s.apply(ctx, t, func(current map[string]model.Overlay) (map[string]model.Overlay, int) {
		return ApplySuggestions(current, s.known, suggestions)
	})
}

func (s *Store) apply(ctx context.Context, t Ticket, merge func(map[string]model.Overlay) (map[string]model.Overlay, int)) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Seq != s.seq {
		s.logger.Warn("discarding stale ai response", "op", t.Op, "seq", t.Seq, "latest", s.seq, "request_id", t.RequestID)
		return 0, ErrStale
	}
	if s.pending != nil && s.pending.Seq == t.Seq {
		s.pending = nil
	}
	next, applied := merge(s.overlay)
	s.overlay = next
	s.logger.Info("ai response applied", "op", t.Op, "updated", applied, "request_id", t.RequestID)
	return applied, s.persistLocked(ctx)
}

func (s *Store) known(id string) bool {
	_, _, ok := s.week.Lookup(id)
	return ok
}

func (s *Store) persistLocked(ctx context.Context) error {
	raw, err := encodeOverlay(s.overlay)
	if err != nil {
		return fmt.Errorf("encode overlay: %w", err)
	}
	if err := s.blobs.Put(ctx, s.key, raw); err != nil {
		s.logger.Error("persist overlay failed", "key", s.key, "error", err)
		return fmt.Errorf("persist overlay: %w", err)
	}
	return nil
}
