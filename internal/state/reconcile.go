package state

import "github.com/sandeepkv93/weekplan/internal/model"

// ApplyRankings returns a copy of overlay with every ranking whose id is known
// merged in. Done, datetime, priority and reason are replaced; notified is
// never touched. Rankings for unknown ids are dropped.
func ApplyRankings(overlay map[string]model.Overlay, known func(string) bool, rankings []model.Ranking) (map[string]model.Overlay, int) {
	out := cloneOverlay(overlay)
	applied := 0
	for _, r := range rankings {
		if !known(r.ID) {
			continue
		}
		entry := out[r.ID]
		if r.Done != nil {
			entry.Done = *r.Done
		}
		if r.DateTime != nil {
			entry.DateTime = model.TimePtr(*r.DateTime)
		} else {
			entry.DateTime = nil
		}
		entry.Priority = model.IntPtr(r.Priority)
		entry.Reason = model.StringPtr(r.Reason)
		out[r.ID] = entry
		applied++
	}
	return out, applied
}

// ApplySuggestions is ApplyRankings for suggested times: only datetime and
// reason are replaced.
func ApplySuggestions(overlay map[string]model.Overlay, known func(string) bool, suggestions []model.Suggestion) (map[string]model.Overlay, int) {
	out := cloneOverlay(overlay)
	applied := 0
	for _, s := range suggestions {
		if !known(s.ID) {
			continue
		}
		entry := out[s.ID]
		entry.DateTime = model.TimePtr(s.Time)
		entry.Reason = model.StringPtr(s.Reasoning)
		out[s.ID] = entry
		applied++
	}
	return out, applied
}

func cloneOverlay(in map[string]model.Overlay) map[string]model.Overlay {
	out := make(map[string]model.Overlay, len(in))
	for id, entry := range in {
		out[id] = cloneEntry(entry)
	}
	return out
}

func cloneEntry(e model.Overlay) model.Overlay {
	if e.DateTime != nil {
		e.DateTime = model.TimePtr(*e.DateTime)
	}
	if e.Priority != nil {
		e.Priority = model.IntPtr(*e.Priority)
	}
	if e.Reason != nil {
		e.Reason = model.StringPtr(*e.Reason)
	}
	return e
}
