package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sandeepkv93/weekplan/internal/ai"
	"github.com/sandeepkv93/weekplan/internal/config"
	"github.com/sandeepkv93/weekplan/internal/logging"
	"github.com/sandeepkv93/weekplan/internal/notify"
	"github.com/sandeepkv93/weekplan/internal/schedule"
	"github.com/sandeepkv93/weekplan/internal/state"
	"github.com/sandeepkv93/weekplan/internal/storage"
	"github.com/sandeepkv93/weekplan/internal/update"
)

type runMode int

const (
	modeCommand runMode = iota
	modeTUI
)

// app holds everything one invocation needs.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	blobs      storage.BlobStore
	store      *state.Store
	assistant  ai.Assistant
	poller     *notify.Poller
	permission notify.Permission
	closers    []io.Closer
}

// openApp loads config and wires storage, state, the assistant and the
// poller. The TUI logs to the configured file; commands log to stderr.
func openApp(ctx context.Context, mode runMode) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}

	a := &app{cfg: cfg}
	if mode == modeTUI && cfg.Log.File != "" {
		logger, closer, err := logging.OpenFile(cfg.Log.File, level)
		if err != nil {
			return nil, err
		}
		a.logger = logger
		a.closers = append(a.closers, closer)
	} else {
		a.logger = logging.New(os.Stderr, level)
	}

	blobs, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.blobs = blobs
	a.closers = append(a.closers, blobs)

	store, err := state.Open(ctx, schedule.Default(), blobs,
		state.WithKey(cfg.Storage.Key),
		state.WithLogger(a.logger),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store

	if mode == modeTUI {
		assistant, err := a.newAssistant()
		if err != nil {
			a.Close()
			return nil, err
		}
		a.assistant = assistant
	}

	a.permission = notify.ResolvePermission(cfg.Notify.Mode, notify.DesktopAvailable)
	var desktop notify.Desktop = notify.NoopDesktop{}
	if a.permission == notify.PermissionGranted {
		desktop = notify.ExecDesktop{}
	}
	a.poller = notify.NewPoller(store,
		notify.WithDesktop(desktop),
		notify.WithLogger(a.logger),
		notify.WithLocation(time.Local),
		notify.WithInterval(cfg.Notify.Interval),
		notify.WithLookahead(cfg.Notify.Lookahead),
		notify.WithBuffer(cfg.Notify.Buffer),
	)
	a.logger.Debug("app ready",
		"storage", cfg.Storage.Driver,
		"provider", cfg.AI.Provider,
		"notifications", a.permission.String(),
	)
	return a, nil
}

// newAssistant builds the configured provider, falling back to the local
// heuristic when no API key is set.
func (a *app) newAssistant() (ai.Assistant, error) {
	return ai.New(ai.Config{
		Provider:  a.cfg.AI.Provider,
		APIKey:    a.cfg.AI.APIKey,
		Model:     a.cfg.AI.Model,
		BaseURL:   a.cfg.AI.BaseURL,
		Timeout:   a.cfg.AI.Timeout,
		MaxTokens: a.cfg.AI.MaxTokens,
	}, a.logger, true)
}

// deps hands the poller to the TUI only when notifications are granted.
func (a *app) deps(ctx context.Context) update.Deps {
	var poller *notify.Poller
	if a.permission == notify.PermissionGranted {
		poller = a.poller
	}
	return update.Deps{
		Store:      a.store,
		Assistant:  a.assistant,
		Poller:     poller,
		Permission: a.permission,
		History:    a.cfg.AI.History,
		Location:   time.Local,
		Now:        time.Now,
		Logger:     a.logger,
		Context:    ctx,
	}
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
