package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/weekplan/internal/update"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "weekplan",
		Short: "Weekly study schedule with AI prioritization",
		Long: `weekplan shows a fixed weekly schedule, tracks completion and planned
times, asks an AI model to rank tasks or suggest times, and raises desktop
reminders shortly before planned tasks start.

Run without a subcommand to open the interactive view.`,
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(atCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(prioritizeCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(resetCmd)
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), modeTUI)
	if err != nil {
		return err
	}
	defer a.Close()

	program := tea.NewProgram(update.NewModel(a.deps(cmd.Context())), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("weekplan failed: %w", err)
	}
	return nil
}
