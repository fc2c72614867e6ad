package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"timeledger/internal/domain"
	"timeledger/internal/errors"
	"timeledger/internal/services"
)

func newAddCommand(app *App) *cobra.Command {
	var date, from, to, projectID, milestoneID string
	var duration time.Duration
	var nonBillable bool

	cmd := &cobra.Command{
		Use:   "add [description]",
		Short: "Add a manual entry",
		Long: `Add a time entry by hand, either as a duration on a date or as a
start/end range. Manual entries always require a description.

Examples:
  tl add "Code review" --date 2026-08-28 --duration 1h30m
  tl add "Standup" --date 2026-08-28 --from 09:00 --to 09:15`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &addCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.execute(addParams{
				description: args[0],
				date:        date,
				from:        from,
				to:          to,
				duration:    duration,
				projectID:   projectID,
				milestoneID: milestoneID,
				billable:    !nonBillable,
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Entry date (2006-01-02), defaults to today")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Worked duration, e.g. 1h30m")
	cmd.Flags().StringVar(&from, "from", "", "Start clock time, e.g. 09:00")
	cmd.Flags().StringVar(&to, "to", "", "End clock time, e.g. 10:30")
	cmd.Flags().StringVar(&projectID, "project", "", "Project to bill the time against")
	cmd.Flags().StringVar(&milestoneID, "milestone", "", "Milestone within the project")
	cmd.Flags().BoolVar(&nonBillable, "non-billable", false, "Mark the entry as not billable")
	return cmd
}

type addParams struct {
	description string
	date        string
	from        string
	to          string
	duration    time.Duration
	projectID   string
	milestoneID string
	billable    bool
}

type addCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *addCommand) execute(params addParams) error {
	input, err := c.buildInput(params)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	opts := services.ManualOptions{
		Description: params.description,
		Billable:    params.billable,
	}
	if params.projectID != "" {
		opts.ProjectID = &params.projectID
	}
	if params.milestoneID != "" {
		opts.MilestoneID = &params.milestoneID
	}

	result, err := c.app.api.CreateManualEntry(c.app.UserID(), input, opts)
	if err != nil {
		return c.errorHandler.Handle("add entry", err)
	}

	entry := result.Entry
	fmt.Printf("Added entry %s (%s)\n", entry.ID, formatSeconds(*entry.DurationSeconds))
	printWarnings(result.Warnings)
	return nil
}

func (c *addCommand) buildInput(params addParams) (domain.ManualInput, error) {
	date := time.Now().In(c.app.loc)
	if params.date != "" {
		parsed, err := parseDate(params.date, c.app.loc)
		if err != nil {
			return domain.ManualInput{}, err
		}
		date = parsed
	}

	if params.from != "" || params.to != "" {
		if params.from == "" || params.to == "" {
			return domain.ManualInput{}, errors.NewInvalidInputError("time_range", params.from+"-"+params.to, "--from and --to must be given together")
		}
		start, err := parseClockOnDate(params.from, date, c.app.loc)
		if err != nil {
			return domain.ManualInput{}, err
		}
		end, err := parseClockOnDate(params.to, date, c.app.loc)
		if err != nil {
			return domain.ManualInput{}, err
		}
		return domain.ManualByRangeInput(start, end), nil
	}

	if params.duration <= 0 {
		return domain.ManualInput{}, errors.NewInvalidInputError("duration", params.duration.String(), "provide --duration or a --from/--to range")
	}
	return domain.ManualByDurationInput(date, int64(params.duration/time.Second)), nil
}
