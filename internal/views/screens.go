package views

import (
	"fmt"
	"strings"
)

type TaskItemData struct {
	ID       string
	Time     string
	Title    string
	Category string
	Done     bool
	DateTime string
	Priority string
	Notified bool
}

type DayPanelData struct {
	Name         string
	Percent      string
	ProgressView string
	Filter       string
	Items        []TaskItemData
	SelectedID   string
}

type DayTabData struct {
	Name    string
	Percent string
	Active  bool
}

type TaskDetailData struct {
	ID         string
	Title      string
	Day        string
	Time       string
	Category   string
	Done       bool
	DateTime   string
	Priority   string
	Notified   bool
	ReasonView string
}

type EditorData struct {
	Active    bool
	TaskTitle string
	InputView string
	ErrorText string
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

// RenderFilterTabs renders the category filter with the active tab marked.
func RenderFilterTabs(tabs []string, active string) string {
	parts := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		if tab == active {
			parts = append(parts, activeStyle.Render(tab))
			continue
		}
		parts = append(parts, tab)
	}
	return "filter: " + strings.Join(parts, " | ")
}

func RenderDayStrip(days []DayTabData) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		label := fmt.Sprintf("%s %s", d.Name, d.Percent)
		if d.Active {
			label = activeStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

func RenderDayPanel(data DayPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s complete\n", data.Name, data.Percent))
	if data.ProgressView != "" {
		b.WriteString(data.ProgressView + "\n")
	}
	b.WriteString("\n")
	if len(data.Items) == 0 {
		b.WriteString(fmt.Sprintf("(no %s tasks)", data.Filter))
		return b.String()
	}
	for _, item := range data.Items {
		cursor := " "
		if item.ID == data.SelectedID {
			cursor = ">"
		}
		check := "[ ]"
		title := item.Title
		if item.Done {
			check = "[x]"
			title = doneStyle.Render(title)
		}
		line := fmt.Sprintf("%s %s %-6s %s %s", cursor, check, item.Time, title, CategoryBadge(item.Category))
		if item.Priority != "" {
			line += " #" + item.Priority
		}
		b.WriteString(line + "\n")
		if item.DateTime != "" {
			bell := ""
			if item.Notified {
				bell = " (notified)"
			}
			b.WriteString(fmt.Sprintf("      @ %s%s\n", item.DateTime, bell))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderTaskDetail(data TaskDetailData) string {
	if strings.TrimSpace(data.ID) == "" {
		return "task:\n(no selection)"
	}
	status := "pending"
	if data.Done {
		status = "done"
	}
	when := data.DateTime
	if when == "" {
		when = "(not set)"
	}
	priority := data.Priority
	if priority == "" {
		priority = "(unranked)"
	}
	var b strings.Builder
	b.WriteString("task:\n")
	b.WriteString(fmt.Sprintf("id: %s\n", data.ID))
	b.WriteString(fmt.Sprintf("title: %s\n", data.Title))
	b.WriteString(fmt.Sprintf("slot: %s %s\n", data.Day, data.Time))
	b.WriteString(fmt.Sprintf("type: %s\n", CategoryBadge(data.Category)))
	b.WriteString(fmt.Sprintf("status: %s\n", status))
	b.WriteString(fmt.Sprintf("datetime: %s\n", when))
	b.WriteString(fmt.Sprintf("priority: %s\n", priority))
	if data.Notified {
		b.WriteString("notified: yes\n")
	}
	if data.ReasonView != "" {
		b.WriteString("\nreason:\n" + data.ReasonView)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderEditor(data EditorData) string {
	if !data.Active {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n\nset datetime for %s:\n", data.TaskTitle))
	b.WriteString("keys: [enter] save [esc] cancel\n")
	b.WriteString(data.InputView)
	if data.ErrorText != "" {
		b.WriteString("\nerror: " + data.ErrorText)
	}
	return b.String()
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("\n\ncommand: %s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("\n\nhelp:\n%s\n%s", strings.Join(data.Bindings, "\n"), data.HelpView)
}
