package cli

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/probelab/contestdb/internal/store"
)

// MigrateOptions holds flags for the migrate subcommands.
type MigrateOptions struct {
	*RootOptions
	Target int // down: version to roll back to
}

// MigrationStatus describes one migration's applied state.
type MigrationStatus struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
	Applied bool   `json:"applied"`
}

// StatusResult is the migrate status payload.
type StatusResult struct {
	Version    int               `json:"version"`
	Migrations []MigrationStatus `json:"migrations"`
}

// String renders the text form of the status output.
func (r StatusResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema version: %d\n", r.Version)
	for _, m := range r.Migrations {
		mark := " "
		if m.Applied {
			mark = "x"
		}
		fmt.Fprintf(&b, "  [%s] %04d %s\n", mark, m.Version, m.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewMigrateCommand creates the migrate command with up/down/status.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
		Long: `Manage the database schema.

Migrations ship as paired forward/reverse scripts. Forward scripts are
idempotent; re-running an applied migration is a no-op. Reverse scripts
fully undo their pair, so any version can be rolled back.

Examples:
  contestdb migrate up --db ./contestdb.db
  contestdb migrate down --db ./contestdb.db --to 1
  contestdb migrate status --db ./contestdb.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	up := &cobra.Command{
		Use:           "up",
		Short:         "Apply all pending migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateUp(opts, cmd)
		},
	}

	down := &cobra.Command{
		Use:           "down",
		Short:         "Roll the schema back to a target version",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateDown(opts, cmd)
		},
	}
	down.Flags().IntVar(&opts.Target, "to", 0, "target schema version (0 drops everything)")

	status := &cobra.Command{
		Use:           "status",
		Short:         "Show applied and pending migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateStatus(opts, cmd)
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}

func runMigrateUp(opts *MigrateOptions, cmd *cobra.Command) error {
	db, err := connect(opts.RootOptions)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Migrate(db); err != nil {
		return WrapExitError(ExitFailure, "migration failed", err)
	}

	return printStatus(opts, cmd, db)
}

func runMigrateDown(opts *MigrateOptions, cmd *cobra.Command) error {
	db, err := connect(opts.RootOptions)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.MigrateDown(db, opts.Target); err != nil {
		return WrapExitError(ExitFailure, "rollback failed", err)
	}

	return printStatus(opts, cmd, db)
}

func runMigrateStatus(opts *MigrateOptions, cmd *cobra.Command) error {
	db, err := connect(opts.RootOptions)
	if err != nil {
		return err
	}
	defer db.Close()

	return printStatus(opts, cmd, db)
}

func printStatus(opts *MigrateOptions, cmd *cobra.Command, db *sqlx.DB) error {
	result, err := statusResult(db)
	if err != nil {
		return WrapExitError(ExitCommandError, "read schema version", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(result)
}

func statusResult(db *sqlx.DB) (StatusResult, error) {
	version, err := store.SchemaVersion(db)
	if err != nil {
		return StatusResult{}, err
	}

	result := StatusResult{Version: version}
	for _, m := range store.Migrations {
		result.Migrations = append(result.Migrations, MigrationStatus{
			Version: m.Version,
			Name:    m.Name,
			Applied: m.Version <= version,
		})
	}
	return result, nil
}

// connect opens the database with pragmas applied but no migration, so
// status and down see the schema as it is.
func connect(opts *RootOptions) (*sqlx.DB, error) {
	path, err := opts.DatabasePath()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "resolve database path", err)
	}

	db, err := store.Connect(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	return db, nil
}
