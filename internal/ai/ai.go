package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sandeepkv93/weekplan/internal/model"
)

var (
	ErrInvalidRequest  = errors.New("ai: invalid request")
	ErrInvalidResponse = errors.New("ai: invalid response")
	ErrMissingAPIKey   = errors.New("ai: api key is not set")
)

const (
	ProviderAnthropic = "anthropic"
	ProviderLocal     = "local"
)

// DefaultHistory describes the user's habits to the suggest-times operation.
const DefaultHistory = "User is a student who prefers to do focused work like Python coding in the morning " +
	"and creative tasks like UI/UX design in the afternoon. Lectures are usually in the afternoon. " +
	"User is most productive on Mondays and Fridays and takes breaks around lunchtime."

// Assistant runs the two AI operations. Calls are single request/response
// with no retries.
type Assistant interface {
	Prioritize(ctx context.Context, req PrioritizeRequest) ([]model.Ranking, error)
	SuggestTimes(ctx context.Context, req SuggestRequest) ([]model.Suggestion, error)
}

type Config struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int
}

// New picks the provider named by cfg. An anthropic provider without a key
// falls back to the local heuristic when fallback is set.
func New(cfg Config, logger *slog.Logger, fallback bool) (Assistant, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderLocal:
		return NewHeuristic(logger), nil
	case ProviderAnthropic, "":
		client, err := NewAnthropicClient(cfg)
		if err != nil {
			if errors.Is(err, ErrMissingAPIKey) && fallback {
				logger.Warn("no api key configured, using local heuristics")
				return NewHeuristic(logger), nil
			}
			return nil, err
		}
		return NewLLM(client, logger), nil
	default:
		return nil, fmt.Errorf("ai: unknown provider %q", cfg.Provider)
	}
}
