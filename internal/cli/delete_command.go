package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [entry-id]",
		Short: "Delete an entry",
		Long:  "Delete an entry. Locked or invoiced entries cannot be deleted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &deleteCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.execute(args[0])
		},
	}
}

type deleteCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *deleteCommand) execute(entryID string) error {
	if err := c.app.api.DeleteEntry(entryID); err != nil {
		return c.errorHandler.Handle("delete entry", err)
	}
	fmt.Printf("Deleted entry %s\n", entryID)
	return nil
}
