package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sandeepkv93/weekplan/internal/notify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the reminder poller in the foreground",
	Long: `Check planned tasks on every interval and raise a desktop notification
for each one starting within the lookahead window. Stops on interrupt.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Bool("once", false, "Scan a single time and exit")
}

func runWatch(cmd *cobra.Command, args []string) error {
	once, _ := cmd.Flags().GetBool("once")

	a, err := openApp(cmd.Context(), modeCommand)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if a.permission != notify.PermissionGranted {
		fmt.Fprintf(out, "desktop notifications %s, printing reminders only\n", a.permission)
	}

	if once {
		fired, err := a.poller.Scan(cmd.Context())
		for _, n := range fired {
			printNotification(cmd, n)
		}
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.poller.Start(ctx)
	defer a.poller.Stop()
	fmt.Fprintf(out, "watching every %s, ctrl+c to stop\n", a.poller.Interval())
	for {
		select {
		case <-ctx.Done():
			if dropped := a.poller.Dropped(); dropped > 0 {
				a.logger.Warn("notifications dropped", "count", dropped)
			}
			return nil
		case n, ok := <-a.poller.C():
			if !ok {
				return nil
			}
			printNotification(cmd, n)
		}
	}
}

func printNotification(cmd *cobra.Command, n notify.Notification) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s: %s\n", n.At.In(time.Local).Format("15:04"), n.Title, n.Body)
}
