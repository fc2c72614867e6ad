package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSweepCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Stop abandoned timers",
		Long: `Stop timers that crossed midnight or exceeded the idle timeout.
Intended to run periodically, e.g. from cron.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &sweepCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.execute()
		},
	}
}

type sweepCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *sweepCommand) execute() error {
	stopped, err := c.app.api.SweepStaleTimers()
	if err != nil {
		return c.errorHandler.Handle("sweep timers", err)
	}
	if len(stopped) == 0 {
		fmt.Println("No stale timers")
		return nil
	}

	for _, entry := range stopped {
		fmt.Printf("Stopped %s (%s) at %s\n", entry.ID, entry.AutoStopReason,
			entry.EndTime.Format(c.app.config.Time.DisplayFormat))
	}
	return nil
}
