package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newClientLogCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "client-log [from] [to]",
		Short: "Show the client-visible work log",
		Long: `Show the work log as a client would see it: dates, descriptions and
durations only, no rates or earnings. Empty when client-visible logs are
turned off in settings.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &clientLogCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.execute(args[0], args[1])
		},
	}
}

type clientLogCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *clientLogCommand) execute(fromStr, toStr string) error {
	from, err := parseDate(fromStr, c.app.loc)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	to, err := parseDate(toStr, c.app.loc)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	log, err := c.app.api.GetClientLog(c.app.UserID(), from, to)
	if err != nil {
		return c.errorHandler.Handle("build client log", err)
	}
	if len(log) == 0 {
		fmt.Println("No visible entries")
		return nil
	}

	for _, entry := range log {
		fmt.Printf("%s  %-8s %s\n",
			entry.Date.Format(c.app.config.Display.DateFormat),
			c.app.api.FormatDuration(time.Duration(entry.DurationSeconds)*time.Second),
			entry.Description)
	}
	return nil
}
