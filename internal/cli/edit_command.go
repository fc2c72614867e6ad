package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"timeledger/internal/services"
)

func newEditCommand(app *App) *cobra.Command {
	var description, start, end, projectID, milestoneID, reason string
	var billable bool

	cmd := &cobra.Command{
		Use:   "edit [entry-id]",
		Short: "Edit an entry",
		Long: `Edit an unlocked entry. Every change is appended to the entry's
edit history; the original recorded times are preserved alongside.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes := services.EntryChanges{}
			if cmd.Flags().Changed("description") {
				changes.Description = &description
			}
			if cmd.Flags().Changed("billable") {
				changes.Billable = &billable
			}
			if cmd.Flags().Changed("project") {
				changes.ProjectID = &projectID
			}
			if cmd.Flags().Changed("milestone") {
				changes.MilestoneID = &milestoneID
			}

			handler := &editCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.execute(args[0], changes, start, end, reason)
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&start, "start", "", "New start time (2006-01-02 15:04)")
	cmd.Flags().StringVar(&end, "end", "", "New end time (2006-01-02 15:04)")
	cmd.Flags().BoolVar(&billable, "billable", true, "Set billable status")
	cmd.Flags().StringVar(&projectID, "project", "", "New project (empty clears)")
	cmd.Flags().StringVar(&milestoneID, "milestone", "", "New milestone (empty clears)")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the entry is being changed")
	return cmd
}

type editCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *editCommand) execute(entryID string, changes services.EntryChanges, start, end, reason string) error {
	if start != "" {
		parsed, err := parseDateTime(start, c.app.loc)
		if err != nil {
			return c.errorHandler.HandleSimple(err)
		}
		changes.StartTime = &parsed
	}
	if end != "" {
		parsed, err := parseDateTime(end, c.app.loc)
		if err != nil {
			return c.errorHandler.HandleSimple(err)
		}
		changes.EndTime = &parsed
	}

	result, err := c.app.api.EditEntry(entryID, changes, reason)
	if err != nil {
		return c.errorHandler.Handle("edit entry", err)
	}

	fmt.Printf("Updated entry %s\n", result.Entry.ID)
	printWarnings(result.Warnings)
	return nil
}
