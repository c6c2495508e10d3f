package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/weekplan/internal/model"
	"github.com/sandeepkv93/weekplan/internal/views"
)

func (m Model) openEditor() Model {
	task, ok := m.selectedTask()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return m
	}
	m.Editor = EditorState{Active: true, TaskID: task.ID}
	m.dateInput.SetValue(model.FormatDateTime(task.DateTime, m.loc))
	m.dateInput.CursorEnd()
	m.dateInput.Focus()
	m.Status = StatusBar{Text: "editing datetime"}
	return m
}

func (m Model) closeEditor() Model {
	m.Editor = EditorState{}
	m.dateInput.SetValue("")
	m.dateInput.Blur()
	return m
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closeEditor()
		m.Status = StatusBar{Text: "edit cancelled"}
		return m, nil
	case "enter":
		return m.submitEditor(), nil
	}
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		m.dateInput.SetValue(m.dateInput.Value() + typedText(msg))
		m.dateInput.CursorEnd()
		return m, nil
	}
	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}

// submitEditor keeps the editor open with the previous value untouched when
// the input does not parse.
func (m Model) submitEditor() Model {
	at, err := model.ParseDateTime(m.dateInput.Value(), m.loc)
	if err != nil {
		m.Editor.Err = err.Error()
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	task, err := m.store.SetDateTime(m.ctx, m.Editor.TaskID, at)
	m.refresh()
	if err != nil {
		m.Editor.Err = err.Error()
		m.fail(err)
		return m
	}
	m = m.closeEditor()
	m.Status = StatusBar{Text: fmt.Sprintf("%s set to %s", task.Title, model.FormatDateTime(task.DateTime, m.loc))}
	return m
}

func (m Model) renderEditor() string {
	title := ""
	if task, ok := m.selectedTask(); ok {
		title = task.Title
	}
	return views.RenderEditor(views.EditorData{
		Active:    m.Editor.Active,
		TaskTitle: title,
		InputView: m.dateInput.View(),
		ErrorText: m.Editor.Err,
	})
}
