package update

import (
	"strconv"

	"github.com/sandeepkv93/weekplan/internal/model"
	"github.com/sandeepkv93/weekplan/internal/views"
)

func (m Model) renderDayPanel() string {
	day := m.currentDay()
	pct := model.Completion(model.OfDay(m.Tasks, day))
	items := make([]views.TaskItemData, 0)
	for _, t := range m.visibleTasks() {
		items = append(items, taskItem(t, m))
	}
	return views.RenderDayPanel(views.DayPanelData{
		Name:         day,
		Percent:      model.FormatPercent(pct),
		ProgressView: m.dayProgress.ViewAs(pct / 100),
		Filter:       m.Filter.Label(),
		Items:        items,
		SelectedID:   m.SelectedTaskID,
	})
}

func taskItem(t model.Task, m Model) views.TaskItemData {
	item := views.TaskItemData{
		ID:       t.ID,
		Time:     t.Time,
		Title:    t.Title,
		Category: string(t.Category),
		Done:     t.Done,
		DateTime: model.FormatDateTime(t.DateTime, m.loc),
		Notified: t.Notified,
	}
	if t.Priority != nil {
		item.Priority = strconv.Itoa(*t.Priority)
	}
	return item
}

func (m Model) renderDayStrip() string {
	tabs := make([]views.DayTabData, 0, len(m.Days))
	for i, d := range m.Days {
		tabs = append(tabs, views.DayTabData{
			Name:    d,
			Percent: model.FormatPercent(model.Completion(model.OfDay(m.Tasks, d))),
			Active:  i == m.DayIndex,
		})
	}
	return views.RenderDayStrip(tabs)
}

func (m Model) renderTaskDetail() string {
	t, ok := m.selectedTask()
	if !ok {
		return views.RenderTaskDetail(views.TaskDetailData{})
	}
	data := views.TaskDetailData{
		ID:         t.ID,
		Title:      t.Title,
		Day:        t.Day,
		Time:       t.Time,
		Category:   string(t.Category),
		Done:       t.Done,
		DateTime:   model.FormatDateTime(t.DateTime, m.loc),
		Notified:   t.Notified,
		ReasonView: views.RenderMarkdown(t.ReasonText()),
	}
	if t.Priority != nil {
		data.Priority = strconv.Itoa(*t.Priority)
	}
	return views.RenderTaskDetail(data)
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.commandInput.View())
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	body := n.Body
	if n.Title != "" {
		body = n.Title + ": " + n.Body
	}
	return views.RenderNotification(n.Level, body)
}
