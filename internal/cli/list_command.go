package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"timeledger/internal/domain"
)

func newListCommand(app *App) *cobra.Command {
	var from, to, projectID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List time entries",
		Long: `List time entries, optionally filtered by date range and project.

Examples:
  tl list
  tl list --from 2026-08-01 --to 2026-09-01
  tl list --project <id>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &listCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.execute(from, to, projectID)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Range start date (2006-01-02)")
	cmd.Flags().StringVar(&to, "to", "", "Range end date, exclusive (2006-01-02)")
	cmd.Flags().StringVar(&projectID, "project", "", "Filter by project")
	return cmd
}

type listCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *listCommand) execute(fromStr, toStr, projectID string) error {
	var from, to *time.Time
	if fromStr != "" {
		parsed, err := parseDate(fromStr, c.app.loc)
		if err != nil {
			return c.errorHandler.HandleSimple(err)
		}
		from = &parsed
	}
	if toStr != "" {
		parsed, err := parseDate(toStr, c.app.loc)
		if err != nil {
			return c.errorHandler.HandleSimple(err)
		}
		to = &parsed
	}

	var project *string
	if projectID != "" {
		project = &projectID
	}

	entries, err := c.app.api.ListEntries(c.app.UserID(), from, to, project)
	if err != nil {
		return c.errorHandler.Handle("list entries", err)
	}
	if len(entries) == 0 {
		fmt.Println("No entries found")
		return nil
	}

	for _, entry := range entries {
		c.printEntry(entry)
	}
	return nil
}

func (c *listCommand) printEntry(entry *domain.TimeEntry) {
	status := ""
	switch {
	case entry.IsRunning():
		status = " [running]"
	case entry.IsLocked():
		status = " [locked]"
	}

	duration := "-"
	if entry.DurationSeconds != nil {
		duration = formatSeconds(*entry.DurationSeconds)
	}

	fmt.Printf("%s  %s  %-8s %s%s\n",
		entry.ID,
		entry.StartTime.Format(c.app.config.Time.DisplayFormat),
		duration,
		entry.Description,
		status)
}
