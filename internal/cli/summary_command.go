package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSummaryCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [from] [to]",
		Short: "Summarize a date range",
		Long:  "Show totals, billable time and earnings for a date range. The end date is exclusive.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &summaryCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.execute(args[0], args[1])
		},
	}
}

type summaryCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *summaryCommand) execute(fromStr, toStr string) error {
	from, err := parseDate(fromStr, c.app.loc)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	to, err := parseDate(toStr, c.app.loc)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	stats, err := c.app.api.GetRangeStats(c.app.UserID(), from, to)
	if err != nil {
		return c.errorHandler.Handle("summarize range", err)
	}

	fmt.Printf("Total:    %s\n", c.app.api.FormatDuration(time.Duration(stats.TotalSeconds)*time.Second))
	fmt.Printf("Billable: %s\n", c.app.api.FormatDuration(time.Duration(stats.BillableSeconds)*time.Second))
	fmt.Printf("Entries:  %d tracked, %d manual\n", stats.TrackedCount, stats.ManualCount)
	fmt.Printf("Earnings: %s\n", c.app.api.FormatCurrency(stats.EarningsCents))
	return nil
}
