package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sandeepkv93/weekplan/internal/model"
)

type slot struct {
	hour, minute int
	why          string
}

var preferredSlots = map[model.Category]slot{
	model.CategoryPython:   {9, 0, "focused coding work fits best in the morning"},
	model.CategoryUIUX:     {14, 0, "creative design work fits best in the afternoon"},
	model.CategoryLectures: {15, 0, "lectures usually run in the afternoon"},
	model.CategoryBreak:    {12, 30, "breaks are taken around lunchtime"},
	model.CategoryMisc:     {16, 0, "light tasks fill the late afternoon"},
}

// Heuristic is a deterministic offline Assistant.
type Heuristic struct {
	logger *slog.Logger
}

func NewHeuristic(logger *slog.Logger) *Heuristic {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Heuristic{logger: logger}
}

// Prioritize ranks overdue tasks first, then tasks with a datetime by
// ascending datetime, then tasks without one alphabetically.
func (h *Heuristic) Prioritize(ctx context.Context, req PrioritizeRequest) ([]model.Ranking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now, _ := time.Parse(time.RFC3339, req.CurrentDateTime)

	type entry struct {
		task PrioritizeTask
		at   *time.Time
	}
	entries := make([]entry, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		at, _ := parseOptionalTime(t.DateTime)
		entries = append(entries, entry{task: t, at: at})
	}
	bucket := func(e entry) int {
		switch {
		case e.at == nil:
			return 2
		case e.at.Before(now):
			return 0
		default:
			return 1
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if ba, bb := bucket(a), bucket(b); ba != bb {
			return ba < bb
		}
		if a.at != nil && b.at != nil && !a.at.Equal(*b.at) {
			return a.at.Before(*b.at)
		}
		ta, tb := strings.ToLower(a.task.Task), strings.ToLower(b.task.Task)
		if ta != tb {
			return ta < tb
		}
		return a.task.ID < b.task.ID
	})

	out := make([]model.Ranking, 0, len(entries))
	for i, e := range entries {
		var reason string
		switch bucket(e) {
		case 0:
			reason = fmt.Sprintf("Overdue since %s.", e.at.Format(model.DateTimeLayout))
		case 1:
			reason = fmt.Sprintf("Due %s, in %s.", e.at.Format(model.DateTimeLayout), humanize(e.at.Sub(now)))
		default:
			reason = "No completion time set; ordered alphabetically."
		}
		out = append(out, model.Ranking{ID: e.task.ID, DateTime: e.at, Priority: i + 1, Reason: reason})
	}
	h.logger.Debug("heuristic prioritize", "tasks", len(out))
	return out, nil
}

// SuggestTimes places each task at its category's preferred slot on the next
// occurrence of the task's weekday.
func (h *Heuristic) SuggestTimes(ctx context.Context, req SuggestRequest) ([]model.Suggestion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := time.Now()
	if req.CurrentDateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, req.CurrentDateTime); err == nil {
			now = parsed
		}
	}
	out := make([]model.Suggestion, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		s := preferredSlots[model.Category(t.Type)]
		at := nextOccurrence(now, t.Day, s.hour, s.minute)
		out = append(out, model.Suggestion{
			ID:        t.ID,
			Time:      at,
			Reasoning: fmt.Sprintf("%s %s.", at.Format("Monday 15:04"), s.why),
		})
	}
	h.logger.Debug("heuristic suggest", "tasks", len(out))
	return out, nil
}

// nextOccurrence returns the first hour:minute on the named weekday that is
// not before now. Unknown day names use the following day.
func nextOccurrence(now time.Time, day string, hour, minute int) time.Time {
	base := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	wd, ok := parseWeekday(day)
	if !ok {
		return base.AddDate(0, 0, 1)
	}
	offset := (int(wd) - int(now.Weekday()) + 7) % 7
	at := base.AddDate(0, 0, offset)
	if at.Before(now) {
		at = at.AddDate(0, 0, 7)
	}
	return at
}

func parseWeekday(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, true
		}
	}
	return 0, false
}

func humanize(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
