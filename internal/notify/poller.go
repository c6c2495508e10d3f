package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/weekplan/internal/model"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Source is the task state the poller scans and marks.
type Source interface {
	Tasks() []model.Task
	MarkNotifiedIf(ctx context.Context, id string, ok func(model.Overlay) bool) (model.Task, bool, error)
}

type Poller struct {
	source    Source
	desktop   Desktop
	clock     Clock
	logger    *slog.Logger
	loc       *time.Location
	interval  time.Duration
	lookahead time.Duration

	mu      sync.Mutex
	out     chan Notification
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

type Option func(*Poller)

func WithClock(c Clock) Option { return func(p *Poller) { p.clock = c } }

func WithDesktop(d Desktop) Option { return func(p *Poller) { p.desktop = d } }

func WithLogger(l *slog.Logger) Option { return func(p *Poller) { p.logger = l } }

func WithLocation(loc *time.Location) Option { return func(p *Poller) { p.loc = loc } }

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithLookahead(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.lookahead = d
		}
	}
}

func WithBuffer(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.out = make(chan Notification, n)
		}
	}
}

func NewPoller(source Source, opts ...Option) *Poller {
	p := &Poller{
		source:    source,
		desktop:   NoopDesktop{},
		clock:     systemClock{},
		logger:    slog.New(slog.DiscardHandler),
		loc:       time.Local,
		interval:  DefaultInterval,
		lookahead: DefaultLookahead,
		out:       make(chan Notification, 16),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) Interval() time.Duration { return p.interval }

// C delivers notifications fired by the background loop.
func (p *Poller) C() <-chan Notification {
	return p.out
}

func (p *Poller) Dropped() uint64 {
	return atomic.LoadUint64(&p.dropped)
}

// Scan fires every due task once. Each fired task is marked notified before
// the desktop alert is sent so a failed send never causes a repeat. Due is
// checked again when marking, so a task completed after the snapshot stays
// silent.
func (p *Poller) Scan(ctx context.Context) ([]Notification, error) {
	now := p.clock.Now()
	stillDue := func(o model.Overlay) bool { return IsDue(o, now, p.lookahead) }
	fired := make([]Notification, 0)
	var errs []error
	for _, candidate := range Due(p.source.Tasks(), now, p.lookahead) {
		t, changed, err := p.source.MarkNotifiedIf(ctx, candidate.ID, stillDue)
		if err != nil {
			p.logger.Error("mark notified failed", "task", candidate.ID, "error", err)
			errs = append(errs, err)
		}
		if !changed {
			continue
		}
		n := Message(t, p.loc)
		if err := p.desktop.Send(n); err != nil {
			p.logger.Warn("desktop notification failed", "task", t.ID, "error", err)
		}
		p.logger.Info("notified", "task", t.ID, "starts", n.At)
		fired = append(fired, n)
	}
	return fired, errors.Join(errs...)
}

// Start runs Scan immediately and then on every interval tick until Stop.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	go p.loop(ctx)
}

func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.stopCh)
	p.mu.Unlock()
	<-p.doneCh
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.doneCh)
	defer close(p.out)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.scanAndPublish(ctx)
	for {
		select {
		case <-ticker.C:
			p.scanAndPublish(ctx)
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		}
	}
}

func (p *Poller) scanAndPublish(ctx context.Context) {
	fired, _ := p.Scan(ctx)
	for _, n := range fired {
		select {
		case p.out <- n:
		default:
			atomic.AddUint64(&p.dropped, 1)
		}
	}
}
