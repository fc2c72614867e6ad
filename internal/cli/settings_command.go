package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"timeledger/internal/domain"
)

func newSettingsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change tracking settings",
	}

	cmd.AddCommand(newSettingsShowCommand(app), newSettingsSetCommand(app))
	return cmd
}

func newSettingsShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := &settingsCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.show()
		},
	}
}

func newSettingsSetCommand(app *App) *cobra.Command {
	var rateCents int64
	var retroDays, warnMinutes, idleMinutes, roundTo, minMinutes int
	var allowOverlap, clientLogs, requireDesc, autoStopMidnight bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings",
		Long: `Change one or more settings. Only flags you pass are changed.

Examples:
  tl settings set --rate-cents 8500 --round-to 15
  tl settings set --max-retro-days 7 --require-description`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := domain.SettingsPatch{}
			if cmd.Flags().Changed("rate-cents") {
				patch.DefaultHourlyRateCents = &rateCents
			}
			if cmd.Flags().Changed("max-retro-days") {
				patch.MaxRetroactiveDays = &retroDays
			}
			if cmd.Flags().Changed("daily-warning-minutes") {
				patch.DailyHourWarningMinutes = &warnMinutes
			}
			if cmd.Flags().Changed("idle-timeout-minutes") {
				patch.IdleTimeoutMinutes = &idleMinutes
			}
			if cmd.Flags().Changed("round-to") {
				patch.RoundToMinutes = &roundTo
			}
			if cmd.Flags().Changed("min-entry-minutes") {
				patch.MinimumEntryMinutes = &minMinutes
			}
			if cmd.Flags().Changed("allow-overlap") {
				patch.AllowOverlapping = &allowOverlap
			}
			if cmd.Flags().Changed("client-logs") {
				patch.ClientVisibleLogs = &clientLogs
			}
			if cmd.Flags().Changed("require-description") {
				patch.RequireDescription = &requireDesc
			}
			if cmd.Flags().Changed("auto-stop-midnight") {
				patch.AutoStopAtMidnight = &autoStopMidnight
			}

			handler := &settingsCommand{app: app, errorHandler: NewErrorHandler()}
			return handler.set(patch)
		},
	}

	cmd.Flags().Int64Var(&rateCents, "rate-cents", 0, "Default hourly rate in cents")
	cmd.Flags().IntVar(&retroDays, "max-retro-days", 0, "How many days back manual entries may go")
	cmd.Flags().IntVar(&warnMinutes, "daily-warning-minutes", 0, "Daily total that triggers a warning (0 disables)")
	cmd.Flags().IntVar(&idleMinutes, "idle-timeout-minutes", 0, "Idle minutes before a timer is auto-stopped (0 disables)")
	cmd.Flags().IntVar(&roundTo, "round-to", 0, "Rounding increment in minutes (0, 1, 5, 6, 10, 15, 30, 60)")
	cmd.Flags().IntVar(&minMinutes, "min-entry-minutes", 0, "Minimum entry duration in minutes")
	cmd.Flags().BoolVar(&allowOverlap, "allow-overlap", false, "Allow overlapping entries")
	cmd.Flags().BoolVar(&clientLogs, "client-logs", true, "Expose work logs to clients")
	cmd.Flags().BoolVar(&requireDesc, "require-description", false, "Require descriptions on tracked entries")
	cmd.Flags().BoolVar(&autoStopMidnight, "auto-stop-midnight", true, "Split timers at midnight")
	return cmd
}

type settingsCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *settingsCommand) show() error {
	s, err := c.app.api.GetSettings(c.app.UserID())
	if err != nil {
		return c.errorHandler.Handle("get settings", err)
	}

	c.print(s)
	return nil
}

func (c *settingsCommand) set(patch domain.SettingsPatch) error {
	s, err := c.app.api.UpdateSettings(c.app.UserID(), patch)
	if err != nil {
		return c.errorHandler.Handle("update settings", err)
	}

	fmt.Println("Settings updated")
	c.print(s)
	return nil
}

func (c *settingsCommand) print(s domain.Settings) {
	fmt.Printf("Default rate:            %s/h\n", c.app.api.FormatCurrency(s.DefaultHourlyRateCents))
	fmt.Printf("Max retroactive days:    %d\n", s.MaxRetroactiveDays)
	fmt.Printf("Daily warning minutes:   %d\n", s.DailyHourWarningMinutes)
	fmt.Printf("Idle timeout minutes:    %d\n", s.IdleTimeoutMinutes)
	fmt.Printf("Round to minutes:        %d\n", s.RoundToMinutes)
	fmt.Printf("Minimum entry minutes:   %d\n", s.MinimumEntryMinutes)
	fmt.Printf("Allow overlapping:       %t\n", s.AllowOverlapping)
	fmt.Printf("Client-visible logs:     %t\n", s.ClientVisibleLogs)
	fmt.Printf("Require description:     %t\n", s.RequireDescription)
	fmt.Printf("Auto-stop at midnight:   %t\n", s.AutoStopAtMidnight)
}
