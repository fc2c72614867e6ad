package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newTimesheetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "timesheet [week-start]",
		Short: "Show a weekly timesheet",
		Long:  "Show a seven-day timesheet starting at the given date.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &timesheetCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.execute(args[0])
		},
	}
}

type timesheetCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *timesheetCommand) execute(weekStartStr string) error {
	weekStart, err := parseDate(weekStartStr, c.app.loc)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	sheet, err := c.app.api.GetWeeklyTimesheet(c.app.UserID(), weekStart)
	if err != nil {
		return c.errorHandler.Handle("build timesheet", err)
	}

	fmt.Printf("Week of %s\n", sheet.WeekStart.Format(c.app.config.Display.DateFormat))
	for _, day := range sheet.Days {
		fmt.Printf("  %s %s  %s\n",
			day.Date.Format("Mon"),
			day.Date.Format(c.app.config.Display.DateFormat),
			c.app.api.FormatDuration(time.Duration(day.TotalSeconds)*time.Second))
	}
	fmt.Printf("Total:    %s\n", c.app.api.FormatDuration(time.Duration(sheet.TotalSeconds)*time.Second))
	fmt.Printf("Billable: %s\n", c.app.api.FormatDuration(time.Duration(sheet.BillableSeconds)*time.Second))
	fmt.Printf("Earnings: %s\n", c.app.api.FormatCurrency(sheet.EarningsCents))
	return nil
}
