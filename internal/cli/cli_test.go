package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/weekplan/internal/model"
	"github.com/sandeepkv93/weekplan/internal/state"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("WEEKPLAN_STORAGE_DRIVER", "file")
	t.Setenv("WEEKPLAN_STORAGE_PATH", filepath.Join(dir, "state.json"))
	t.Setenv("WEEKPLAN_AI_PROVIDER", "local")
	t.Setenv("WEEKPLAN_NOTIFY_MODE", "off")
	t.Setenv("WEEKPLAN_LOG_LEVEL", "error")
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListPrintsWeek(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Monday  0% complete", "Python Data Structures", "Friday"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestListFilters(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "list", "--day", "monday", "--category", "break")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Lunch Break") || strings.Contains(out, "Python Data Structures") || strings.Contains(out, "Tuesday") {
		t.Fatalf("unexpected filtered output:\n%s", out)
	}
	if _, err := run(t, "list", "--day", "Funday"); err == nil {
		t.Fatal("expected unknown day error")
	}
	if _, err := run(t, "list", "--category", "chores"); err == nil {
		t.Fatal("expected unknown category error")
	}
}

func TestDonePersistsAcrossInvocations(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "done", "mon1")
	if err != nil {
		t.Fatalf("done: %v", err)
	}
	if !strings.Contains(out, "Python Data Structures marked done") {
		t.Fatalf("unexpected output: %q", out)
	}
	out, err = run(t, "list", "--day", "Monday")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "[x] mon1") || !strings.Contains(out, "Monday  33% complete") {
		t.Fatalf("expected mon1 done in output:\n%s", out)
	}
}

func TestResetForgetsOverlay(t *testing.T) {
	setupEnv(t)
	if out, _ := run(t, "list"); strings.Contains(out, "last saved") {
		t.Fatalf("expected no save time before any change:\n%s", out)
	}
	if _, err := run(t, "done", "mon1"); err != nil {
		t.Fatalf("done: %v", err)
	}
	if out, _ := run(t, "list"); !strings.Contains(out, "last saved") {
		t.Fatalf("expected save time after a change:\n%s", out)
	}
	out, err := run(t, "reset", "--yes")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !strings.Contains(out, "week reset") {
		t.Fatalf("unexpected output: %q", out)
	}
	out, _ = run(t, "list", "--day", "Monday")
	if strings.Contains(out, "[x]") || strings.Contains(out, "last saved") {
		t.Fatalf("expected clean week after reset:\n%s", out)
	}
}

func TestDoneUnknownTask(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "done", "sun9")
	if !errors.Is(err, state.ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
}

func TestAtAndClear(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "at", "tue1", "2030-01-08", "09:30")
	if err != nil {
		t.Fatalf("at: %v", err)
	}
	if !strings.Contains(out, "planned for 2030-01-08 09:30") {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, err := run(t, "at", "tue1", "next tuesday"); !errors.Is(err, model.ErrInvalidDateTime) {
		t.Fatalf("expected ErrInvalidDateTime, got %v", err)
	}
	out, err = run(t, "clear", "tue1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !strings.Contains(out, "has no planned time") {
		t.Fatalf("unexpected output: %q", out)
	}
	out, _ = run(t, "list", "--day", "Tuesday")
	if strings.Contains(out, "2030-01-08") {
		t.Fatalf("expected datetime cleared:\n%s", out)
	}
}

func TestPrioritizeWithLocalProvider(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "prioritize")
	if err != nil {
		t.Fatalf("prioritize: %v", err)
	}
	if !strings.Contains(out, "prioritize updated 15 task(s)") {
		t.Fatalf("unexpected output: %q", out)
	}
	out, _ = run(t, "list")
	if !strings.Contains(out, "P1") {
		t.Fatalf("expected priorities in list:\n%s", out)
	}
}

func TestSuggestWithLocalProvider(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "suggest")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !strings.Contains(out, "suggest updated") {
		t.Fatalf("unexpected output: %q", out)
	}
	out, _ = run(t, "list", "--day", "Monday")
	if !strings.Contains(out, "@ ") {
		t.Fatalf("expected suggested datetimes in list:\n%s", out)
	}
}

func TestWatchOnceFiresDueTask(t *testing.T) {
	setupEnv(t)
	soon := time.Now().Add(2 * time.Minute).Format(model.DateTimeLayout)
	if _, err := run(t, "at", "mon1", soon); err != nil {
		t.Fatalf("at: %v", err)
	}
	out, err := run(t, "watch", "--once")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if !strings.Contains(out, "Upcoming Task: Python Data Structures") {
		t.Fatalf("expected reminder in output:\n%s", out)
	}
	out, err = run(t, "watch", "--once")
	if err != nil {
		t.Fatalf("second watch: %v", err)
	}
	if strings.Contains(out, "Upcoming Task") {
		t.Fatalf("expected no repeat reminder:\n%s", out)
	}
}
