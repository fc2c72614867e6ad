package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"timeledger/internal/services"
)

func newStopCommand(app *App) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running timer",
		Long:  "Stop the currently running timer. A timer that crossed midnight is split at the day boundary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &stopCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.execute(cmd, description)
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Set the entry description on stop")
	return cmd
}

type stopCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *stopCommand) execute(cmd *cobra.Command, description string) error {
	opts := services.StopOptions{}
	if cmd.Flags().Changed("description") {
		opts.Description = &description
	}

	result, err := c.app.api.StopTimer(c.app.UserID(), opts)
	if err != nil {
		return c.errorHandler.Handle("stop timer", err)
	}

	stopped := result.Stopped
	fmt.Printf("Stopped timer %s (%s)\n", stopped.ID, formatSeconds(*stopped.DurationSeconds))
	if result.CarryOver != nil {
		carry := result.CarryOver
		fmt.Printf("Split at midnight: %s continues as %s (%s)\n",
			carry.StartTime.Format(time.Kitchen), carry.ID, formatSeconds(*carry.DurationSeconds))
	}
	printWarnings(result.Warnings)
	return nil
}
