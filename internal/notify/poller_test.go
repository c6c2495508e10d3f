package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/weekplan/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeSource struct {
	mu    sync.Mutex
	tasks []model.Task
	err   error
	// afterSnapshot mutates tasks once Tasks has copied them.
	afterSnapshot func([]model.Task)
}

func (s *fakeSource) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]model.Task(nil), s.tasks...)
	if s.afterSnapshot != nil {
		s.afterSnapshot(s.tasks)
	}
	return out
}

func (s *fakeSource) MarkNotifiedIf(_ context.Context, id string, ok func(model.Overlay) bool) (model.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			if s.tasks[i].Notified || (ok != nil && !ok(s.tasks[i].Overlay)) {
				return s.tasks[i], false, nil
			}
			s.tasks[i].Notified = true
			return s.tasks[i], true, s.err
		}
	}
	return model.Task{}, false, errors.New("unknown")
}

type recordingDesktop struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (d *recordingDesktop) Send(n Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
	return d.err
}

var base = time.Date(2026, 3, 2, 8, 50, 0, 0, time.UTC)

func task(id string, at *time.Time) model.Task {
	return model.Task{Template: model.Template{ID: id, Title: "Task " + id, Category: model.CategoryMisc}, Overlay: model.Overlay{DateTime: at}}
}

func at(d time.Duration) *time.Time {
	v := base.Add(d)
	return &v
}

func TestDueWindow(t *testing.T) {
	done := task("done", at(time.Minute))
	done.Done = true
	notified := task("notified", at(time.Minute))
	notified.Notified = true
	tasks := []model.Task{
		task("none", nil),
		task("past", at(-time.Second)),
		task("now", at(0)),
		task("edge", at(5 * time.Minute)),
		task("soon", at(time.Minute)),
		task("later", at(5*time.Minute + time.Second)),
		done,
		notified,
	}
	got := Due(tasks, base, DefaultLookahead)
	if len(got) != 2 || got[0].ID != "edge" || got[1].ID != "soon" {
		t.Fatalf("unexpected due tasks: %+v", got)
	}
}

func TestMessageText(t *testing.T) {
	n := Message(task("x", at(9*time.Minute)), time.UTC)
	if n.Title != "Upcoming Task: Task x" || n.Body != "Starts at 08:59" {
		t.Fatalf("unexpected message: %+v", n)
	}
}

func TestScanFiresOnceAndNeverAgain(t *testing.T) {
	clock := &fakeClock{now: base}
	src := &fakeSource{tasks: []model.Task{task("a", at(10 * time.Minute))}}
	desk := &recordingDesktop{}
	p := NewPoller(src, WithClock(clock), WithDesktop(desk), WithLocation(time.UTC))

	if fired, _ := p.Scan(t.Context()); len(fired) != 0 {
		t.Fatalf("expected nothing 10 minutes out, got %+v", fired)
	}
	clock.Advance(6 * time.Minute)
	fired, err := p.Scan(t.Context())
	if err != nil || len(fired) != 1 {
		t.Fatalf("expected one notification, got %+v %v", fired, err)
	}
	clock.Advance(time.Minute)
	if fired, _ := p.Scan(t.Context()); len(fired) != 0 {
		t.Fatalf("expected no repeat, got %+v", fired)
	}

	// Moving the datetime back into the window does not re-arm the task.
	src.tasks[0].DateTime = model.TimePtr(clock.Now().Add(2 * time.Minute))
	if fired, _ := p.Scan(t.Context()); len(fired) != 0 {
		t.Fatalf("expected notified task to stay silent, got %+v", fired)
	}
	if len(desk.sent) != 1 {
		t.Fatalf("expected one desktop alert, got %d", len(desk.sent))
	}
}

func TestScanSkipsDoneTasks(t *testing.T) {
	clock := &fakeClock{now: base}
	tk := task("a", at(time.Minute))
	tk.Done = true
	p := NewPoller(&fakeSource{tasks: []model.Task{tk}}, WithClock(clock))
	if fired, _ := p.Scan(t.Context()); len(fired) != 0 {
		t.Fatalf("expected done task to be skipped, got %+v", fired)
	}
}

func TestScanSkipsTaskCompletedAfterSnapshot(t *testing.T) {
	clock := &fakeClock{now: base}
	src := &fakeSource{tasks: []model.Task{task("a", at(time.Minute))}}
	src.afterSnapshot = func(tasks []model.Task) { tasks[0].Done = true }
	desk := &recordingDesktop{}
	p := NewPoller(src, WithClock(clock), WithDesktop(desk))

	fired, err := p.Scan(t.Context())
	if err != nil || len(fired) != 0 {
		t.Fatalf("expected no notification for a task done mid-scan, got %+v %v", fired, err)
	}
	if len(desk.sent) != 0 || src.tasks[0].Notified {
		t.Fatalf("expected task left unmarked and silent, sent=%d notified=%v", len(desk.sent), src.tasks[0].Notified)
	}
}

func TestScanSurvivesDesktopAndPersistFailures(t *testing.T) {
	clock := &fakeClock{now: base}
	src := &fakeSource{tasks: []model.Task{task("a", at(time.Minute))}, err: errors.New("disk full")}
	desk := &recordingDesktop{err: errors.New("no display")}
	p := NewPoller(src, WithClock(clock), WithDesktop(desk))
	fired, err := p.Scan(t.Context())
	if err == nil {
		t.Fatal("expected persist error to be reported")
	}
	if len(fired) != 1 || !src.tasks[0].Notified {
		t.Fatalf("expected task to fire and stay marked, got %+v", fired)
	}
}

func TestPollerLoopPublishes(t *testing.T) {
	clock := &fakeClock{now: base}
	src := &fakeSource{tasks: []model.Task{task("a", at(time.Minute)), task("b", at(2 * time.Minute))}}
	p := NewPoller(src, WithClock(clock), WithInterval(10*time.Millisecond), WithBuffer(4))
	p.Start(t.Context())
	defer p.Stop()

	seen := map[string]bool{}
	deadline := time.After(time.Second)
	for len(seen) < 2 {
		select {
		case n := <-p.C():
			seen[n.TaskID] = true
		case <-deadline:
			t.Fatalf("timed out, saw %v", seen)
		}
	}
}

func TestPollerDropsWhenConsumerIsSlow(t *testing.T) {
	clock := &fakeClock{now: base}
	tasks := make([]model.Task, 0, 5)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		tasks = append(tasks, task(id, at(time.Minute)))
	}
	p := NewPoller(&fakeSource{tasks: tasks}, WithClock(clock), WithBuffer(1), WithInterval(time.Hour))
	p.Start(t.Context())
	time.Sleep(50 * time.Millisecond)
	p.Stop()
	if p.Dropped() != 4 {
		t.Fatalf("expected 4 dropped, got %d", p.Dropped())
	}
}

func TestStopIsIdempotent(t *testing.T) {
	p := NewPoller(&fakeSource{})
	p.Stop()
	p.Start(t.Context())
	p.Stop()
	p.Stop()
}

func TestResolvePermission(t *testing.T) {
	yes := func() bool { return true }
	no := func() bool { return false }
	tests := []struct {
		mode  string
		probe func() bool
		want  Permission
	}{
		{mode: "off", probe: yes, want: PermissionDenied},
		{mode: "on", probe: no, want: PermissionGranted},
		{mode: "auto", probe: yes, want: PermissionGranted},
		{mode: "", probe: no, want: PermissionDenied},
		{mode: "sometimes", probe: yes, want: PermissionDefault},
	}
	for _, tc := range tests {
		if got := ResolvePermission(tc.mode, tc.probe); got != tc.want {
			t.Fatalf("mode %q: expected %s, got %s", tc.mode, tc.want, got)
		}
	}
}

func TestEscapeAppleScript(t *testing.T) {
	if got := escapeAppleScript(`say "hi" \ bye`); got != `say \"hi\" \\ bye` {
		t.Fatalf("unexpected escape: %q", got)
	}
}
