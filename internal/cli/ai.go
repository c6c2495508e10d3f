package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/weekplan/internal/ai"
	"github.com/sandeepkv93/weekplan/internal/update"
	"github.com/spf13/cobra"
)

var prioritizeCmd = &cobra.Command{
	Use:   "prioritize",
	Short: "Ask the AI to rank every task",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAIOp(cmd, update.OpPrioritize)
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Ask the AI to suggest times for unplanned tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAIOp(cmd, update.OpSuggest)
	},
}

func runAIOp(cmd *cobra.Command, op string) error {
	a, err := openApp(cmd.Context(), modeCommand)
	if err != nil {
		return err
	}
	defer a.Close()

	assistant, err := a.newAssistant()
	if err != nil {
		return err
	}
	ticket, err := a.store.Begin(op)
	if err != nil {
		return err
	}
	history := strings.TrimSpace(a.cfg.AI.History)
	if history == "" {
		history = ai.DefaultHistory
	}
	result := update.RunAI(cmd.Context(), assistant, ticket, a.store.Tasks(), time.Now(), history)
	if result.Err != nil {
		a.store.Release(ticket)
		return fmt.Errorf("%s failed: %w", op, result.Err)
	}

	var applied int
	switch op {
	case update.OpPrioritize:
		applied, err = a.store.ApplyRankings(cmd.Context(), ticket, result.Rankings)
	default:
		applied, err = a.store.ApplySuggestions(cmd.Context(), ticket, result.Suggestions)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s updated %d task(s)\n", op, applied)
	return nil
}
