package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/sandeepkv93/weekplan/internal/model"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the week's tasks",
	Long: `Print every task grouped by day with its completion, planned time and
AI priority. Use --day and --category to narrow the output.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var doneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Toggle a task's completion",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

var atCmd = &cobra.Command{
	Use:   "at <task-id> [YYYY-MM-DD HH:MM]",
	Short: "Plan a task for a date and time",
	Long: `Set the planned datetime of a task. When the datetime is omitted an
interactive prompt asks for it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAt,
}

var clearCmd = &cobra.Command{
	Use:   "clear <task-id>",
	Short: "Remove a task's planned datetime",
	Args:  cobra.ExactArgs(1),
	RunE:  runClear,
}

func init() {
	listCmd.Flags().StringP("day", "d", "", "Only show this day (e.g. Monday)")
	listCmd.Flags().String("category", "all", "Only show this category")
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

func runList(cmd *cobra.Command, args []string) error {
	day, _ := cmd.Flags().GetString("day")
	category, _ := cmd.Flags().GetString("category")
	filter, ok := model.ParseFilter(category)
	if !ok {
		return fmt.Errorf("unknown category %q", category)
	}

	a, err := openApp(cmd.Context(), modeCommand)
	if err != nil {
		return err
	}
	defer a.Close()

	days := a.store.Week().DayNames()
	if day = strings.TrimSpace(day); day != "" {
		match := ""
		for _, d := range days {
			if strings.EqualFold(d, day) {
				match = d
			}
		}
		if match == "" {
			return fmt.Errorf("unknown day %q", day)
		}
		days = []string{match}
	}

	tasks := a.store.Tasks()
	out := cmd.OutOrStdout()
	for i, d := range days {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printDay(out, tasks, d, filter)
	}
	if saved, err := a.store.LastSaved(cmd.Context()); err == nil {
		fmt.Fprintf(out, "\nlast saved %s\n", saved.In(time.Local).Format(model.DateTimeLayout))
	}
	return nil
}

func printDay(w io.Writer, tasks []model.Task, day string, filter model.Filter) {
	pct := model.Completion(model.OfDay(tasks, day))
	fmt.Fprintf(w, "%s  %s complete\n", day, model.FormatPercent(pct))
	for _, t := range model.DayTasks(tasks, day, filter) {
		printTask(w, t)
	}
}

func printTask(w io.Writer, t model.Task) {
	check := " "
	if t.Done {
		check = "x"
	}
	line := fmt.Sprintf("  [%s] %-10s %-13s %s (%s)", check, t.ID, t.Time, t.Title, t.Category)
	if t.Priority != nil {
		line += fmt.Sprintf("  P%d", *t.Priority)
	}
	if t.DateTime != nil {
		line += "  @ " + model.FormatDateTime(t.DateTime, time.Local)
	}
	fmt.Fprintln(w, line)
	if reason := t.ReasonText(); reason != "" {
		fmt.Fprintf(w, "        %s\n", reason)
	}
}

func runDone(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), modeCommand)
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.store.ToggleDone(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	state := "not done"
	if task.Done {
		state = "done"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s marked %s\n", task.Title, state)
	return nil
}

func runAt(cmd *cobra.Command, args []string) error {
	raw := strings.TrimSpace(strings.Join(args[1:], " "))

	a, err := openApp(cmd.Context(), modeCommand)
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.store.Task(args[0])
	if err != nil {
		return err
	}
	if raw == "" {
		raw = model.FormatDateTime(task.DateTime, time.Local)
		if err := promptDateTime(task.Title, &raw); err != nil {
			return err
		}
	}
	when, err := model.ParseDateTime(raw, time.Local)
	if err != nil {
		return err
	}
	task, err = a.store.SetDateTime(cmd.Context(), task.ID, when)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s planned for %s\n", task.Title, model.FormatDateTime(task.DateTime, time.Local))
	return nil
}

func promptDateTime(title string, value *string) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("When should \"" + title + "\" happen?").
				Description("Format: " + model.DateTimeLayout).
				Placeholder(model.DateTimeLayout).
				Value(value).
				Validate(func(s string) error {
					_, err := model.ParseDateTime(s, time.Local)
					return err
				}),
		),
	).WithTheme(huh.ThemeDracula())
	return form.Run()
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), modeCommand)
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.store.ClearDateTime(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s has no planned time\n", task.Title)
	return nil
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget all completion, times and AI rankings",
	Long: `Delete the stored overlay so every task returns to its template state.
Asks for confirmation unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Reset the whole week?").
					Description("Completion, planned times and AI rankings are removed.").
					Value(&yes),
			),
		).WithTheme(huh.ThemeDracula()).Run()
		if err != nil {
			return err
		}
		if !yes {
			fmt.Fprintln(cmd.OutOrStdout(), "reset cancelled")
			return nil
		}
	}

	a, err := openApp(cmd.Context(), modeCommand)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.Reset(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "week reset")
	return nil
}
