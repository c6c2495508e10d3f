package model

import "time"

// Ranking is one prioritized task as returned by a prioritizer. A nil DateTime
// clears the task's datetime; a nil Done keeps the current value.
type Ranking struct {
	ID       string
	DateTime *time.Time
	Done     *bool
	Priority int
	Reason   string
}

// Suggestion is a proposed start time for one task.
type Suggestion struct {
	ID        string
	Time      time.Time
	Reasoning string
}
