package cli

import (
	"os"

	"github.com/spf13/cobra"

	"timeledger/internal/errors"
	"timeledger/internal/export"
)

func newExportCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [week-start]",
		Short: "Export a weekly timesheet",
		Long: `Export the week starting at the given date to stdout.

Supported formats:
  csv  - Comma-separated values
  xlsx - Excel workbook

Example:
  tl export 2026-08-24 --format xlsx > week.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &exportCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.execute(args[0], format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or xlsx")
	return cmd
}

type exportCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *exportCommand) execute(weekStartStr, format string) error {
	weekStart, err := parseDate(weekStartStr, c.app.loc)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	sheet, err := c.app.api.GetWeeklyTimesheet(c.app.UserID(), weekStart)
	if err != nil {
		return c.errorHandler.Handle("build timesheet", err)
	}

	exporter := export.NewExporter(c.app.api.Reporting())
	switch format {
	case "csv":
		err = exporter.WriteCSV(os.Stdout, sheet)
	case "xlsx":
		err = exporter.WriteXLSX(os.Stdout, sheet)
	default:
		err = errors.NewInvalidInputError("format", format, "must be csv or xlsx")
	}
	if err != nil {
		return c.errorHandler.Handle("export timesheet", err)
	}
	return nil
}
