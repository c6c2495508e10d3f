package ai

import (
	"strings"
	"text/template"
)

const systemPrompt = "You are a personal scheduling assistant. Respond with a single JSON array and nothing else."

var prioritizeTemplate = template.Must(template.New("prioritize").Funcs(promptFuncs).Parse(
	`Given the following list of tasks, re-prioritize them based on their expected completion time (datetime) and the current time.
Tasks with earlier expected completion times should be prioritized higher. Tasks that have no expected completion time should be prioritized lower, and ordered alphabetically.
Consider tasks that are overdue as highest priority.

Current Date and Time: {{.CurrentDateTime}}

Tasks:
{{range .Tasks}}- ID: {{.ID}}
  Task: {{.Task}}
  Type: {{.Type}}
  Time: {{.Time}}
  Expected Completion Time: {{orNull .DateTime}}
  Done: {{.Done}}
{{end}}
Return a JSON array with one object per task using the keys "id", "task", "type", "time", "datetime" (RFC 3339 or null), "done", "priority" (integer, lower number = higher priority) and "reason" (a short reason for the priority). If the task is overdue, make this explicit in the reason.`))

var suggestTemplate = template.Must(template.New("suggest").Funcs(promptFuncs).Parse(
	`Suggest optimal times for tasks based on the user's historical data, deadlines, and priorities.
Analyze the following tasks and the user's historical data to suggest the best time for each task. Consider deadlines and priorities to minimize conflicts and maximize productivity.

Current Date and Time: {{.CurrentDateTime}}

Tasks:
{{range .Tasks}}- Task ID: {{.ID}}
  Task: {{.Task}}
  Type: {{.Type}}
  Day: {{.Day}}
  Deadline: {{orNull .Deadline}}
  Priority: {{.Priority}}
  Original Time: {{orNull .OriginalTime}}
{{end}}
User Historical Data: {{.UserHistoricalData}}

Return a JSON array with one object per task using the keys "id", "suggestedTime" (RFC 3339) and "reasoning" (a short explanation).`))

var promptFuncs = template.FuncMap{
	"orNull": func(v *string) string {
		if v == nil {
			return "null"
		}
		return *v
	},
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
