package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidCategory = errors.New("model: invalid task category")
	ErrInvalidPriority = errors.New("model: invalid task priority")
)

// UnrankedPriority is the sort key used for tasks without a priority.
const UnrankedPriority = 99

type Category string

const (
	CategoryPython   Category = "python"
	CategoryUIUX     Category = "uiux"
	CategoryLectures Category = "lectures"
	CategoryBreak    Category = "break"
	CategoryMisc     Category = "misc"
)

// Categories lists every category in filter order.
var Categories = []Category{CategoryPython, CategoryUIUX, CategoryLectures, CategoryBreak, CategoryMisc}

func (c Category) IsValid() bool {
	switch c {
	case CategoryPython, CategoryUIUX, CategoryLectures, CategoryBreak, CategoryMisc:
		return true
	default:
		return false
	}
}

// Template is the immutable part of a task, fixed at build time.
type Template struct {
	ID       string
	Time     string
	Title    string
	Category Category
}

func (t Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	return nil
}

type Day struct {
	Name  string
	Items []Template
}

// Overlay holds the mutable per-task fields layered over a Template.
type Overlay struct {
	Done     bool       `json:"done,omitempty"`
	DateTime *time.Time `json:"datetime,omitempty"`
	Notified bool       `json:"notified,omitempty"`
	Priority *int       `json:"priority,omitempty"`
	Reason   *string    `json:"reason,omitempty"`
}

func (o Overlay) Validate() error {
	if o.Priority != nil && *o.Priority < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, *o.Priority)
	}
	return nil
}

func (o Overlay) IsZero() bool {
	return !o.Done && o.DateTime == nil && !o.Notified && o.Priority == nil && o.Reason == nil
}

// Task is a template merged with its overlay.
type Task struct {
	Template
	Day string
	Overlay
}

func (t Task) SortPriority() int {
	if t.Priority == nil {
		return UnrankedPriority
	}
	return *t.Priority
}

func (t Task) ReasonText() string {
	if t.Reason == nil {
		return ""
	}
	return *t.Reason
}

// Merge joins templates with overlay state by id, preserving template order.
func Merge(days []Day, overlay map[string]Overlay) []Task {
	out := make([]Task, 0)
	for _, d := range days {
		for _, tpl := range d.Items {
			out = append(out, Task{Template: tpl, Day: d.Name, Overlay: overlay[tpl.ID]})
		}
	}
	return out
}

// Completion returns the share of done tasks as a percentage in [0, 100].
func Completion(tasks []Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Done {
			done++
		}
	}
	return float64(done) / float64(len(tasks)) * 100
}

func FormatPercent(pct float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(pct)))
}

func IntPtr(v int) *int {
	return &v
}

func StringPtr(v string) *string {
	return &v
}

func TimePtr(v time.Time) *time.Time {
	return &v
}
