package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/weekplan/internal/commands"
	"github.com/sandeepkv93/weekplan/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.commandInput.SetValue(m.commandInput.Value() + typedText(msg))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m, nil
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) resolveTarget(target string) (string, error) {
	if target == commands.TargetSelected {
		if m.SelectedTaskID == "" {
			return "", &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task selected"}
		}
		return m.SelectedTaskID, nil
	}
	if _, _, ok := m.store.Week().Lookup(target); !ok {
		return "", &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown task id: %s", target)}
	}
	return target, nil
}

func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var followUp tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Done: func(a commands.TargetArgs) (commands.Result, error) {
			id, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			task, err := m.store.ToggleDone(m.ctx, id)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("%s done=%t", task.Title, task.Done)}, nil
		},
		At: func(a commands.AtArgs) (commands.Result, error) {
			id, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			at, err := model.ParseDateTime(a.When, m.loc)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			task, err := m.store.SetDateTime(m.ctx, id, at)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("%s set to %s", task.Title, at.In(m.loc).Format(model.DateTimeLayout))}, nil
		},
		Clear: func(a commands.TargetArgs) (commands.Result, error) {
			id, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			task, err := m.store.ClearDateTime(m.ctx, id)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("datetime cleared: %s", task.Title)}, nil
		},
		Filter: func(a commands.FilterArgs) (commands.Result, error) {
			f, ok := model.ParseFilter(a.Category)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown category: %s", a.Category)}
			}
			m.Filter = f
			m.Cursor = 0
			m.SelectedTaskID = ""
			return commands.Result{Message: "filter: " + f.Label()}, nil
		},
		Prioritize: func() (commands.Result, error) {
			next, c := m.startAI(OpPrioritize)
			m = next.(Model)
			followUp = c
			return commands.Result{Message: m.Status.Text}, statusErr(m.Status)
		},
		Suggest: func() (commands.Result, error) {
			next, c := m.startAI(OpSuggest)
			m = next.(Model)
			followUp = c
			return commands.Result{Message: m.Status.Text}, statusErr(m.Status)
		},
	})
	m.refresh()
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
	} else {
		m.Status = StatusBar{Text: res.Message}
		m.notify("Command", res.Message, "info")
	}
	return m, followUp
}

func statusErr(s StatusBar) error {
	if s.IsError {
		return fmt.Errorf("%s", s.Text)
	}
	return nil
}

func typedText(msg tea.KeyMsg) string {
	if msg.Type == tea.KeySpace {
		return " "
	}
	return string(msg.Runes)
}
