package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProjectCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	var rateCents int64
	createCmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &projectCommand{app: app, errorHandler: NewErrorHandler()}
			var rate *int64
			if cmd.Flags().Changed("rate-cents") {
				rate = &rateCents
			}
			return handler.create(args[0], rate)
		},
	}
	createCmd.Flags().Int64Var(&rateCents, "rate-cents", 0, "Hourly rate override in cents")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &projectCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.list()
		},
	}

	cmd.AddCommand(createCmd, listCmd)
	return cmd
}

type projectCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *projectCommand) create(name string, rateCents *int64) error {
	project, err := c.app.api.CreateProject(c.app.UserID(), name, rateCents)
	if err != nil {
		return c.errorHandler.Handle("create project", err)
	}

	fmt.Printf("Created project %s (%s)\n", project.Name, project.ID)
	return nil
}

func (c *projectCommand) list() error {
	projects, err := c.app.api.ListProjects(c.app.UserID())
	if err != nil {
		return c.errorHandler.Handle("list projects", err)
	}
	if len(projects) == 0 {
		fmt.Println("No projects")
		return nil
	}

	for _, project := range projects {
		rate := "default rate"
		if project.HourlyRateCents != nil {
			rate = c.app.api.FormatCurrency(*project.HourlyRateCents) + "/h"
		}
		fmt.Printf("%s  %s  (%s)\n", project.ID, project.Name, rate)
	}
	return nil
}
