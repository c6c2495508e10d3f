package update

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/sandeepkv93/weekplan/internal/ai"
	"github.com/sandeepkv93/weekplan/internal/model"
	"github.com/sandeepkv93/weekplan/internal/notify"
	"github.com/sandeepkv93/weekplan/internal/state"
)

const (
	OpPrioritize = "prioritize"
	OpSuggest    = "suggest"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	PrevDay    string
	NextDay    string
	Up         string
	Down       string
	Filter     string
	Toggle     string
	Edit       string
	Clear      string
	Prioritize string
	Suggest    string
	Palette    string
	Help       string
	Quit       string
}

type EditorState struct {
	Active bool
	TaskID string
	Err    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

// Deps wires the model to the rest of the application.
type Deps struct {
	Store      *state.Store
	Assistant  ai.Assistant
	Poller     *notify.Poller
	Permission notify.Permission
	History    string
	Location   *time.Location
	Now        func() time.Time
	Logger     *slog.Logger
	Context    context.Context
}

type Model struct {
	WeekNumber     int
	Days           []string
	DayIndex       int
	Cursor         int
	Filter         model.Filter
	SelectedTaskID string
	Tasks          []model.Task
	Editor         EditorState
	Palette        CommandPaletteState
	HelpVisible    bool
	Busy           bool
	BusyOp         string
	Permission     notify.Permission
	Notifications  []Notification
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error

	ctx       context.Context
	store     *state.Store
	assistant ai.Assistant
	poller    *notify.Poller
	history   string
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger

	dateInput    textinput.Model
	commandInput textinput.Model
	aiSpinner    spinner.Model
	dayProgress  progress.Model
	helpModel    help.Model
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// SwitchDayMsg selects a day by name.
type SwitchDayMsg struct {
	Day string
}

// AIResultMsg carries the outcome of one AI request back to the event loop.
type AIResultMsg struct {
	Ticket      state.Ticket
	Rankings    []model.Ranking
	Suggestions []model.Suggestion
	Err         error
}

type PollTickMsg struct {
	At time.Time
}

type NotifiedMsg struct {
	Items []notify.Notification
	Err   error
}

func NewModel(deps Deps) Model {
	m := Model{
		Permission: deps.Permission,
		ctx:        deps.Context,
		store:      deps.Store,
		assistant:  deps.Assistant,
		poller:     deps.Poller,
		history:    deps.History,
		loc:        deps.Location,
		now:        deps.Now,
		logger:     deps.Logger,
		Keys: GlobalKeyMap{
			PrevDay:    "h",
			NextDay:    "l",
			Up:         "k",
			Down:       "j",
			Filter:     "tab",
			Toggle:     " ",
			Edit:       "e",
			Clear:      "x",
			Prioritize: "p",
			Suggest:    "s",
			Palette:    "/",
			Help:       "?",
			Quit:       "q",
		},
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	if m.loc == nil {
		m.loc = time.Local
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	if strings.TrimSpace(m.history) == "" {
		m.history = ai.DefaultHistory
	}
	week := m.store.Week()
	m.WeekNumber = week.Number
	m.Days = week.DayNames()
	m.initBubbleComponents()
	m.refresh()
	return m
}

func (m *Model) initBubbleComponents() {
	m.dateInput = textinput.New()
	m.dateInput.Prompt = "when> "
	m.dateInput.Placeholder = model.DateTimeLayout
	m.dateInput.CharLimit = 32
	m.dateInput.Width = 32

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.aiSpinner = spinner.New()
	m.aiSpinner.Spinner = spinner.Dot

	m.dayProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage())
	m.helpModel = help.New()
}

// refresh reloads the task snapshot and keeps the cursor on a visible task.
func (m *Model) refresh() {
	m.Tasks = m.store.Tasks()
	m.Busy = m.store.Busy()
	if !m.Busy {
		m.BusyOp = ""
	}
	visible := m.visibleTasks()
	if m.SelectedTaskID != "" {
		for i, t := range visible {
			if t.ID == m.SelectedTaskID {
				m.Cursor = i
				break
			}
		}
	}
	if m.Cursor >= len(visible) {
		m.Cursor = len(visible) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if len(visible) == 0 {
		m.SelectedTaskID = ""
		return
	}
	m.SelectedTaskID = visible[m.Cursor].ID
}

func (m Model) currentDay() string {
	if len(m.Days) == 0 {
		return ""
	}
	return m.Days[m.DayIndex]
}

func (m Model) visibleTasks() []model.Task {
	return model.DayTasks(m.Tasks, m.currentDay(), m.Filter)
}

func (m Model) selectedTask() (model.Task, bool) {
	for _, t := range m.Tasks {
		if t.ID == m.SelectedTaskID {
			return t, true
		}
	}
	return model.Task{}, false
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    m.now(),
	})
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
}

func (m *Model) fail(err error) {
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
}
