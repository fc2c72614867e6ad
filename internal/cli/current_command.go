package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"timeledger/internal/validation"
)

func newCurrentCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &currentCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.execute()
		},
	}
}

type currentCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *currentCommand) execute() error {
	entry, err := c.app.api.GetRunningEntry(c.app.UserID())
	if err != nil {
		return c.errorHandler.Handle("get running timer", err)
	}
	if entry == nil {
		fmt.Println("No timer running")
		return nil
	}

	elapsed := int64(time.Since(entry.StartTime) / time.Second)
	fmt.Printf("Running: %s\n", entry.ID)
	if entry.Description != "" {
		fmt.Printf("  Description: %s\n", entry.Description)
	}
	fmt.Printf("  Started:     %s\n", entry.StartTime.Format(c.app.config.Time.DisplayFormat))
	fmt.Printf("  Elapsed:     %s\n", formatSeconds(elapsed))
	return nil
}

// printWarnings surfaces validator advisories without failing the command.
func printWarnings(warnings []validation.Warning) {
	for _, warning := range warnings {
		fmt.Printf("Warning: %s\n", warning.Message)
	}
}
