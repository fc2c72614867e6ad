package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"timeledger/internal/services"
)

func newStartCommand(app *App) *cobra.Command {
	var projectID string
	var nonBillable bool

	cmd := &cobra.Command{
		Use:   "start [description]",
		Short: "Start a timer",
		Long:  "Start tracking time. Only one timer can run at once; stop the current one first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &startCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.execute(strings.Join(args, " "), projectID, nonBillable)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project to bill the time against")
	cmd.Flags().BoolVar(&nonBillable, "non-billable", false, "Mark the entry as not billable")
	return cmd
}

type startCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *startCommand) execute(description, projectID string, nonBillable bool) error {
	opts := services.StartOptions{Description: description}
	if projectID != "" {
		opts.ProjectID = &projectID
	}
	if nonBillable {
		billable := false
		opts.Billable = &billable
	}

	entry, err := c.app.api.StartTimer(c.app.UserID(), opts)
	if err != nil {
		return c.errorHandler.Handle("start timer", err)
	}

	fmt.Printf("Started timer %s at %s\n", entry.ID, entry.StartTime.Format(c.app.config.Time.DisplayFormat))
	return nil
}
