package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/weekplan/internal/model"
)

// DefaultSuggestPriority is sent for tasks that have not been ranked yet.
const DefaultSuggestPriority = 3

type PrioritizeTask struct {
	ID       string  `json:"id"`
	Task     string  `json:"task"`
	Type     string  `json:"type"`
	Time     string  `json:"time"`
	DateTime *string `json:"datetime"`
	Done     bool    `json:"done"`
}

type PrioritizeRequest struct {
	Tasks           []PrioritizeTask `json:"tasks"`
	CurrentDateTime string           `json:"currentDateTime"`
}

type PrioritizedTask struct {
	ID       string       `json:"id"`
	Task     string       `json:"task"`
	Type     string       `json:"type"`
	Time     string       `json:"time"`
	DateTime NullableTime `json:"datetime"`
	Done     *bool        `json:"done,omitempty"`
	Priority *int         `json:"priority"`
	Reason   string       `json:"reason"`
}

// NullableTime tells an explicit null apart from a missing key.
type NullableTime struct {
	Present bool
	Value   *string
}

func (n *NullableTime) UnmarshalJSON(raw []byte) error {
	n.Present = true
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n NullableTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Value)
}

type SuggestTask struct {
	ID           string  `json:"id"`
	Task         string  `json:"task"`
	Type         string  `json:"type"`
	Day          string  `json:"day"`
	Deadline     *string `json:"deadline"`
	Priority     int     `json:"priority"`
	OriginalTime *string `json:"originalTime"`
}

type SuggestRequest struct {
	Tasks              []SuggestTask `json:"tasks"`
	UserHistoricalData string        `json:"userHistoricalData"`
	CurrentDateTime    string        `json:"currentDateTime"`
}

type SuggestedTime struct {
	ID            string `json:"id"`
	SuggestedTime string `json:"suggestedTime"`
	Reasoning     string `json:"reasoning"`
}

func formatRFC3339(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

// BuildPrioritizeRequest packages the merged week for the prioritize call.
func BuildPrioritizeRequest(tasks []model.Task, now time.Time) PrioritizeRequest {
	out := PrioritizeRequest{
		Tasks:           make([]PrioritizeTask, 0, len(tasks)),
		CurrentDateTime: now.Format(time.RFC3339),
	}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, PrioritizeTask{
			ID:       t.ID,
			Task:     t.Title,
			Type:     string(t.Category),
			Time:     t.Time,
			DateTime: formatRFC3339(t.DateTime),
			Done:     t.Done,
		})
	}
	return out
}

// BuildSuggestRequest packages the merged week for the suggest-times call.
// Deadlines are always null in this deployment.
func BuildSuggestRequest(tasks []model.Task, history string, now time.Time) SuggestRequest {
	out := SuggestRequest{
		Tasks:              make([]SuggestTask, 0, len(tasks)),
		UserHistoricalData: history,
		CurrentDateTime:    now.Format(time.RFC3339),
	}
	for _, t := range tasks {
		priority := DefaultSuggestPriority
		if t.Priority != nil {
			priority = *t.Priority
		}
		out.Tasks = append(out.Tasks, SuggestTask{
			ID:           t.ID,
			Task:         t.Title,
			Type:         string(t.Category),
			Day:          t.Day,
			Priority:     priority,
			OriginalTime: formatRFC3339(t.DateTime),
		})
	}
	return out
}

func parseOptionalTime(v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	raw := strings.TrimSpace(*v)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r PrioritizeRequest) Validate() error {
	if _, err := time.Parse(time.RFC3339, r.CurrentDateTime); err != nil {
		return fmt.Errorf("%w: currentDateTime: %v", ErrInvalidRequest, err)
	}
	if len(r.Tasks) == 0 {
		return fmt.Errorf("%w: no tasks", ErrInvalidRequest)
	}
	for i, t := range r.Tasks {
		if err := validateTaskFields(t.ID, t.Task, t.Type); err != nil {
			return fmt.Errorf("%w: tasks[%d]: %v", ErrInvalidRequest, i, err)
		}
		if _, err := parseOptionalTime(t.DateTime); err != nil {
			return fmt.Errorf("%w: tasks[%d].datetime: %v", ErrInvalidRequest, i, err)
		}
	}
	return nil
}

func (r SuggestRequest) Validate() error {
	if len(r.Tasks) == 0 {
		return fmt.Errorf("%w: no tasks", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.UserHistoricalData) == "" {
		return fmt.Errorf("%w: historical data is required", ErrInvalidRequest)
	}
	for i, t := range r.Tasks {
		if err := validateTaskFields(t.ID, t.Task, t.Type); err != nil {
			return fmt.Errorf("%w: tasks[%d]: %v", ErrInvalidRequest, i, err)
		}
		if t.Priority < 0 {
			return fmt.Errorf("%w: tasks[%d].priority is negative", ErrInvalidRequest, i)
		}
		if _, err := parseOptionalTime(t.OriginalTime); err != nil {
			return fmt.Errorf("%w: tasks[%d].originalTime: %v", ErrInvalidRequest, i, err)
		}
	}
	return nil
}

func validateTaskFields(id, task, typ string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(task) == "" {
		return fmt.Errorf("task is required")
	}
	if !model.Category(typ).IsValid() {
		return fmt.Errorf("unknown type %q", typ)
	}
	return nil
}

// Rankings validates a prioritize response and converts it. The datetime key
// is required: null clears the datetime, a missing key is rejected.
func Rankings(items []PrioritizedTask) ([]model.Ranking, error) {
	out := make([]model.Ranking, 0, len(items))
	for i, it := range items {
		if err := validateTaskFields(it.ID, it.Task, it.Type); err != nil {
			return nil, fmt.Errorf("%w: [%d]: %v", ErrInvalidResponse, i, err)
		}
		if strings.TrimSpace(it.Time) == "" {
			return nil, fmt.Errorf("%w: [%d].time is required", ErrInvalidResponse, i)
		}
		if it.Priority == nil {
			return nil, fmt.Errorf("%w: [%d].priority is required", ErrInvalidResponse, i)
		}
		if *it.Priority < 0 {
			return nil, fmt.Errorf("%w: [%d].priority is negative", ErrInvalidResponse, i)
		}
		if strings.TrimSpace(it.Reason) == "" {
			return nil, fmt.Errorf("%w: [%d].reason is required", ErrInvalidResponse, i)
		}
		if !it.DateTime.Present {
			return nil, fmt.Errorf("%w: [%d].datetime is required", ErrInvalidResponse, i)
		}
		at, err := parseOptionalTime(it.DateTime.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: [%d].datetime: %v", ErrInvalidResponse, i, err)
		}
		out = append(out, model.Ranking{
			ID:       it.ID,
			DateTime: at,
			Done:     it.Done,
			Priority: *it.Priority,
			Reason:   it.Reason,
		})
	}
	return out, nil
}

// Suggestions validates a suggest-times response and converts it.
func Suggestions(items []SuggestedTime) ([]model.Suggestion, error) {
	out := make([]model.Suggestion, 0, len(items))
	for i, it := range items {
		if strings.TrimSpace(it.ID) == "" {
			return nil, fmt.Errorf("%w: [%d].id is required", ErrInvalidResponse, i)
		}
		if strings.TrimSpace(it.Reasoning) == "" {
			return nil, fmt.Errorf("%w: [%d].reasoning is required", ErrInvalidResponse, i)
		}
		at, err := time.Parse(time.RFC3339, strings.TrimSpace(it.SuggestedTime))
		if err != nil {
			return nil, fmt.Errorf("%w: [%d].suggestedTime: %v", ErrInvalidResponse, i, err)
		}
		out = append(out, model.Suggestion{ID: it.ID, Time: at, Reasoning: it.Reasoning})
	}
	return out, nil
}
