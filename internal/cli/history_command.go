package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history [entry-id]",
		Short: "Show an entry's edit history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &historyCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.execute(args[0])
		},
	}
}

type historyCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *historyCommand) execute(entryID string) error {
	records, err := c.app.api.GetEditHistory(entryID)
	if err != nil {
		return c.errorHandler.Handle("get edit history", err)
	}
	if len(records) == 0 {
		fmt.Println("No edits recorded")
		return nil
	}

	for _, record := range records {
		fmt.Printf("%s  %s: %q -> %q", record.EditedAt.Format(c.app.config.Time.DisplayFormat),
			record.Field, record.OldValue, record.NewValue)
		if record.Reason != "" {
			fmt.Printf("  (%s)", record.Reason)
		}
		fmt.Println()
	}
	return nil
}
