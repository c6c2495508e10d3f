package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/weekplan/internal/ai"
	"github.com/sandeepkv93/weekplan/internal/model"
	"github.com/sandeepkv93/weekplan/internal/state"
)

// startAI reserves the request slot and returns the command running op.
// Only one request is outstanding at a time across both operations.
func (m Model) startAI(op string) (tea.Model, tea.Cmd) {
	if m.assistant == nil {
		m.Status = StatusBar{Text: "AI is not configured", IsError: true}
		return m, nil
	}
	ticket, err := m.store.Begin(op)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Busy = true
	m.BusyOp = op
	m.Status = StatusBar{Text: fmt.Sprintf("%s started", op)}
	return m, tea.Batch(m.aiSpinner.Tick, m.aiCmd(ticket))
}

func (m Model) aiCmd(ticket state.Ticket) tea.Cmd {
	assistant := m.assistant
	ctx := m.ctx
	tasks := m.store.Tasks()
	now := m.now()
	history := m.history
	return func() tea.Msg {
		return RunAI(ctx, assistant, ticket, tasks, now, history)
	}
}

// RunAI performs the request described by ticket.
func RunAI(ctx context.Context, assistant ai.Assistant, ticket state.Ticket, tasks []model.Task, now time.Time, history string) AIResultMsg {
	out := AIResultMsg{Ticket: ticket}
	switch ticket.Op {
	case OpPrioritize:
		out.Rankings, out.Err = assistant.Prioritize(ctx, ai.BuildPrioritizeRequest(tasks, now))
	case OpSuggest:
		out.Suggestions, out.Err = assistant.SuggestTimes(ctx, ai.BuildSuggestRequest(tasks, history, now))
	default:
		out.Err = fmt.Errorf("unknown ai operation %q", ticket.Op)
	}
	return out
}

func (m Model) applyAIResult(msg AIResultMsg) Model {
	op := msg.Ticket.Op
	if msg.Err != nil {
		m.store.Release(msg.Ticket)
		m.refresh()
		m.logger.Error("ai request failed", "op", op, "request_id", msg.Ticket.RequestID, "error", msg.Err)
		text := fmt.Sprintf("Failed to %s tasks: %v", verb(op), msg.Err)
		m.fail(fmt.Errorf("%s", text))
		m.notify("AI Error", text, "error")
		return m
	}

	var (
		applied int
		err     error
	)
	if op == OpPrioritize {
		applied, err = m.store.ApplyRankings(m.ctx, msg.Ticket, msg.Rankings)
	} else {
		applied, err = m.store.ApplySuggestions(m.ctx, msg.Ticket, msg.Suggestions)
	}
	m.refresh()
	switch {
	case isStale(err):
		m.Status = StatusBar{Text: fmt.Sprintf("discarded outdated %s response", op)}
	case err != nil:
		m.fail(err)
	default:
		text := fmt.Sprintf("%s updated %d task(s)", op, applied)
		m.Status = StatusBar{Text: text}
		m.notify("AI", text, "info")
	}
	return m
}

func verb(op string) string {
	if op == OpSuggest {
		return "suggest times for"
	}
	return op
}
