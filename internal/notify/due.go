package notify

import (
	"time"

	"github.com/sandeepkv93/weekplan/internal/model"
)

const (
	DefaultInterval  = 60 * time.Second
	DefaultLookahead = 5 * time.Minute
)

// Due returns the tasks that should fire now: not done, not yet notified and
// starting within (now, now+lookahead].
func Due(tasks []model.Task, now time.Time, lookahead time.Duration) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range tasks {
		if IsDue(t.Overlay, now, lookahead) {
			out = append(out, t)
		}
	}
	return out
}

// IsDue reports whether one entry should fire at now.
func IsDue(o model.Overlay, now time.Time, lookahead time.Duration) bool {
	if o.Done || o.Notified || o.DateTime == nil {
		return false
	}
	diff := o.DateTime.Sub(now)
	return diff > 0 && diff <= lookahead
}

func Message(t model.Task, loc *time.Location) Notification {
	if loc == nil {
		loc = time.Local
	}
	n := Notification{TaskID: t.ID, Title: "Upcoming Task: " + t.Title}
	if t.DateTime != nil {
		n.At = *t.DateTime
		n.Body = "Starts at " + t.DateTime.In(loc).Format("15:04")
	}
	return n
}
