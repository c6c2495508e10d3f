package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/weekplan/internal/model"
)

// LLM implements Assistant on top of a Completer.
type LLM struct {
	completer Completer
	logger    *slog.Logger
}

func NewLLM(completer Completer, logger *slog.Logger) *LLM {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LLM{completer: completer, logger: logger}
}

func (l *LLM) Prioritize(ctx context.Context, req PrioritizeRequest) ([]model.Ranking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var items []PrioritizedTask
	if err := l.call(ctx, "prioritize", prioritizeTemplate, req, &items); err != nil {
		return nil, err
	}
	return Rankings(items)
}

func (l *LLM) SuggestTimes(ctx context.Context, req SuggestRequest) ([]model.Suggestion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var items []SuggestedTime
	if err := l.call(ctx, "suggest", suggestTemplate, req, &items); err != nil {
		return nil, err
	}
	return Suggestions(items)
}

func (l *LLM) call(ctx context.Context, op string, tmpl *template.Template, data any, out any) error {
	requestID := uuid.NewString()
	logger := l.logger.With("op", op, "request_id", requestID)

	prompt, err := render(tmpl, data)
	if err != nil {
		return fmt.Errorf("%w: render prompt: %v", ErrInvalidRequest, err)
	}
	started := time.Now()
	logger.Debug("ai request", "prompt_bytes", len(prompt))
	text, err := l.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		logger.Error("ai request failed", "error", err, "elapsed", time.Since(started))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal([]byte(stripFences(text)), out); err != nil {
		logger.Error("ai response is not valid json", "error", err, "raw", truncate(text, maxErrorBody))
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, op, err)
	}
	logger.Info("ai request completed", "elapsed", time.Since(started))
	return nil
}
