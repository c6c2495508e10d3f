package update

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/weekplan/internal/model"
	"github.com/sandeepkv93/weekplan/internal/state"
	"github.com/sandeepkv93/weekplan/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.poller != nil {
		return m.scanCmd()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Editor.Active {
			return m.handleEditorKey(typed)
		}
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed)
		}
		return m.handleKey(typed)
	case spinner.TickMsg:
		if m.Busy {
			var cmd tea.Cmd
			m.aiSpinner, cmd = m.aiSpinner.Update(typed)
			return m, cmd
		}
	case SwitchDayMsg:
		for i, d := range m.Days {
			if strings.EqualFold(d, typed.Day) {
				m.DayIndex = i
				m.Cursor = 0
				m.SelectedTaskID = ""
				m.refresh()
			}
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		if typed.Err != nil {
			m.fail(typed.Err)
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case AIResultMsg:
		return m.applyAIResult(typed), nil
	case PollTickMsg:
		if m.poller == nil {
			return m, nil
		}
		return m, m.scanCmd()
	case NotifiedMsg:
		for _, n := range typed.Items {
			m.notify(n.Title, n.Body, "reminder")
		}
		if typed.Err != nil {
			m.logger.Warn("notification scan reported errors", "error", typed.Err)
		}
		m.refresh()
		return m, m.tickCmd()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	switch keyStr {
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
		return m, nil
	case m.Keys.Palette:
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.PrevDay, "left":
		m.moveDay(-1)
		return m, nil
	case m.Keys.NextDay, "right":
		m.moveDay(1)
		return m, nil
	case m.Keys.Up, "up":
		if m.Cursor > 0 {
			m.Cursor--
			m.syncSelection()
		}
		return m, nil
	case m.Keys.Down, "down":
		if m.Cursor < len(m.visibleTasks())-1 {
			m.Cursor++
			m.syncSelection()
		}
		return m, nil
	case m.Keys.Filter:
		m.cycleFilter(1)
		return m, nil
	case "shift+tab":
		m.cycleFilter(-1)
		return m, nil
	case m.Keys.Toggle, "enter":
		return m.toggleSelected(), nil
	case m.Keys.Edit:
		return m.openEditor(), nil
	case m.Keys.Clear:
		return m.clearSelected(), nil
	case m.Keys.Prioritize:
		return m.startAI(OpPrioritize)
	case m.Keys.Suggest:
		return m.startAI(OpSuggest)
	case "1", "2", "3", "4", "5", "6", "7":
		idx := int(keyStr[0] - '1')
		if idx < len(m.Days) {
			m.DayIndex = idx
			m.Cursor = 0
			m.SelectedTaskID = ""
			m.refresh()
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) moveDay(delta int) {
	if len(m.Days) == 0 {
		return
	}
	m.DayIndex = (m.DayIndex + delta + len(m.Days)) % len(m.Days)
	m.Cursor = 0
	m.SelectedTaskID = ""
	m.refresh()
}

func (m *Model) cycleFilter(delta int) {
	tabs := filterTabs()
	current := 0
	for i, tab := range tabs {
		if tab == m.Filter.Label() {
			current = i
		}
	}
	next := tabs[(current+delta+len(tabs))%len(tabs)]
	f, _ := model.ParseFilter(next)
	m.Filter = f
	m.Cursor = 0
	m.SelectedTaskID = ""
	m.refresh()
	m.Status = StatusBar{Text: "filter: " + f.Label()}
}

func (m *Model) syncSelection() {
	visible := m.visibleTasks()
	if m.Cursor >= 0 && m.Cursor < len(visible) {
		m.SelectedTaskID = visible[m.Cursor].ID
	}
}

func filterTabs() []string {
	tabs := []string{"all"}
	for _, c := range model.Categories {
		tabs = append(tabs, string(c))
	}
	return tabs
}

func (m Model) toggleSelected() Model {
	if m.SelectedTaskID == "" {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return m
	}
	task, err := m.store.ToggleDone(m.ctx, m.SelectedTaskID)
	m.refresh()
	if err != nil {
		m.fail(err)
		return m
	}
	if task.Done {
		m.Status = StatusBar{Text: fmt.Sprintf("done: %s", task.Title)}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("reopened: %s", task.Title)}
	}
	return m
}

func (m Model) clearSelected() Model {
	if m.SelectedTaskID == "" {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return m
	}
	task, err := m.store.ClearDateTime(m.ctx, m.SelectedTaskID)
	m.refresh()
	if err != nil {
		m.fail(err)
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("datetime cleared: %s", task.Title)}
	return m
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	rightPane := m.renderTaskDetail() + m.renderEditor() + m.renderCommandPalette() + m.renderHelpIfVisible()

	notificationView := ""
	if m.Busy {
		notificationView = fmt.Sprintf("ai: %s %s running", m.aiSpinner.View(), m.BusyOp)
	}
	notificationView = strings.TrimSpace(strings.Join([]string{
		notificationView,
		strings.TrimSpace(m.renderNotificationsView()),
	}, "\n"))

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("Week %d Schedule | week %s complete | notifications: %s", m.WeekNumber, model.FormatPercent(model.Completion(m.Tasks)), m.Permission),
		DayStrip:     m.renderDayStrip() + "\n" + views.RenderFilterTabs(filterTabs(), m.Filter.Label()),
		LeftPane:     m.renderDayPanel(),
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: notificationView,
		Footer:       fmt.Sprintf("keys: h/l day | j/k move | tab filter | space done | e edit | x clear | p prioritize | s suggest | / cmd | %s help | %s quit", m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) scanCmd() tea.Cmd {
	poller := m.poller
	ctx := m.ctx
	return func() tea.Msg {
		items, err := poller.Scan(ctx)
		return NotifiedMsg{Items: items, Err: err}
	}
}

func (m Model) tickCmd() tea.Cmd {
	if m.poller == nil {
		return nil
	}
	return tea.Tick(m.poller.Interval(), func(t time.Time) tea.Msg { return PollTickMsg{At: t} })
}

func isStale(err error) bool {
	return errors.Is(err, state.ErrStale)
}
