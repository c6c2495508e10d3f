package model

import (
	"sort"
	"strings"
)

// Filter selects tasks by category; the zero value matches everything.
type Filter struct {
	Category Category
}

func (f Filter) Matches(t Task) bool {
	if f.Category == "" {
		return true
	}
	return t.Category == f.Category
}

func (f Filter) Label() string {
	if f.Category == "" {
		return "all"
	}
	return string(f.Category)
}

// ParseFilter accepts "all", "" or any known category name.
func ParseFilter(raw string) (Filter, bool) {
	v := Category(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" || v == "all" {
		return Filter{}, true
	}
	if !v.IsValid() {
		return Filter{}, false
	}
	return Filter{Category: v}, true
}

// DayTasks returns the tasks of one day that match the filter, ordered by
// ascending priority with unranked tasks last. Ties keep template order.
func DayTasks(tasks []Task, day string, f Filter) []Task {
	out := make([]Task, 0)
	for _, t := range tasks {
		if t.Day == day && f.Matches(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortPriority() < out[j].SortPriority()
	})
	return out
}

// OfDay returns every task of the day regardless of filter, in template order.
func OfDay(tasks []Task, day string) []Task {
	out := make([]Task, 0)
	for _, t := range tasks {
		if t.Day == day {
			out = append(out, t)
		}
	}
	return out
}
