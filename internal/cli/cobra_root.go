package cli

import (
	"time"

	"github.com/spf13/cobra"

	"timeledger/internal/api"
	"timeledger/internal/config"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	app    *App
	config *config.Config
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(apiInstance *api.API, cfg *config.Config, loc *time.Location) *RootCommand {
	root := &RootCommand{
		app:    NewApp(apiInstance, cfg, loc),
		config: cfg,
	}

	root.cmd = &cobra.Command{
		Use:   "tl",
		Short: "A command-line time tracking ledger for freelancers",
		Long: `Timeledger (tl) tracks billable work with a defensible audit trail.

FEATURES:
  • Live timers with a single-running-timer guarantee
  • Manual entries with retroactive-window and overlap checking
  • Duration rounding and minimum-duration normalization
  • Append-only edit history on every entry
  • Invoice locking: invoiced entries become immutable
  • Weekly timesheets, summaries and CSV/XLSX export

EXAMPLES:
  tl start "Refactoring search" --project <id>   # Start a timer
  tl stop                                        # Stop the running timer
  tl current                                     # Show the running timer
  tl add "Code review" --date 2026-08-28 --duration 1h30m
  tl add "Standup" --date 2026-08-28 --from 09:00 --to 09:15
  tl edit <entry-id> --description "..." --reason "typo"
  tl list --from 2026-08-01 --to 2026-09-01
  tl timesheet 2026-08-24                        # Week starting that day
  tl summary 2026-08-01 2026-09-01
  tl export 2026-08-24 --format xlsx > week.xlsx
  tl settings set --round-to 15 --max-retro-days 7

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > defaults

    TL_DB_DIR            Database directory (default: ~/.timeledger)
    TL_DB_FILENAME       Database filename (default: timeledger.db)
    TL_USER              Acting user id (default: default)
    TL_TIMEZONE          Business timezone, e.g. Europe/Berlin (default: system)
    TL_DEBUG             Enable debug logging when set

GETTING HELP:
  tl [command] --help`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.getConfigFromFlags()
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("db-dir", "", "Database directory (overrides TL_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides TL_DB_FILENAME)")
	flags.String("user", "", "Acting user id (overrides TL_USER)")
}

// getConfigFromFlags applies flag overrides on top of the loaded configuration
func (r *RootCommand) getConfigFromFlags() error {
	flags := r.cmd.PersistentFlags()

	if dir, _ := flags.GetString("db-dir"); dir != "" {
		r.config.Database.Dir = dir
	}
	if filename, _ := flags.GetString("db-filename"); filename != "" {
		r.config.Database.Filename = filename
	}
	if user, _ := flags.GetString("user"); user != "" {
		r.config.Application.UserID = user
	}

	return r.config.Validate()
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		newStartCommand(r.app),
		newStopCommand(r.app),
		newCurrentCommand(r.app),
		newAddCommand(r.app),
		newEditCommand(r.app),
		newDeleteCommand(r.app),
		newHistoryCommand(r.app),
		newListCommand(r.app),
		newSummaryCommand(r.app),
		newTimesheetCommand(r.app),
		newClientLogCommand(r.app),
		newExportCommand(r.app),
		newSettingsCommand(r.app),
		newProjectCommand(r.app),
		newInvoiceCommand(r.app),
		newSweepCommand(r.app),
	)
}
