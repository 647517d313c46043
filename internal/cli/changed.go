package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/probelab/contestdb/internal/store"
)

// ChangedOptions holds flags for the changed command.
type ChangedOptions struct {
	*RootOptions
	Entity string
	Since  string // RFC 3339 cursor; empty means everything
}

// ValidEntities are the tracked tables the changed command can inspect.
// Submissions are append-only and carry no updated_at, so they are not
// listed here.
var ValidEntities = []string{"contests", "problems", "users", "difficulties"}

// ChangedRow is one changed row in the output.
type ChangedRow struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChangedResult is the changed command payload.
type ChangedResult struct {
	Entity string       `json:"entity"`
	Since  string       `json:"since,omitempty"`
	Rows   []ChangedRow `json:"rows"`
}

// String renders the text form of the changed output.
func (r ChangedResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s changed: %d\n", r.Entity, len(r.Rows))
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "  %s\t%s\n", row.ID, row.UpdatedAt.UTC().Format(time.RFC3339Nano))
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewChangedCommand creates the changed command.
func NewChangedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ChangedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "changed",
		Short: "List rows changed since a cursor",
		Long: `List rows of a tracked table whose updated_at is after the cursor.

This is the read the incremental indexer performs between passes: feed it
the time of the previous pass and it reports exactly the rows that changed.

Examples:
  contestdb changed --db ./contestdb.db --entity contests
  contestdb changed --db ./contestdb.db --entity problems --since 2024-06-01T00:00:00Z`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChanged(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Entity, "entity", "", "tracked table to inspect (required)")
	_ = cmd.MarkFlagRequired("entity")
	cmd.Flags().StringVar(&opts.Since, "since", "", "RFC 3339 cursor; empty lists everything")

	return cmd
}

func runChanged(opts *ChangedOptions, cmd *cobra.Command) error {
	if !isValidEntity(opts.Entity) {
		return WrapExitError(ExitCommandError,
			fmt.Sprintf("invalid entity %q: must be one of %v", opts.Entity, ValidEntities), nil)
	}

	var cursor time.Time
	if opts.Since != "" {
		t, err := time.Parse(time.RFC3339, opts.Since)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid --since %q", opts.Since), err)
		}
		cursor = t
	}

	path, err := opts.DatabasePath()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve database path", err)
	}

	s, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer s.Close()

	rows, err := changedRows(cmd.Context(), s, opts.Entity, cursor)
	if err != nil {
		return WrapExitError(ExitFailure, "query changed rows", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(ChangedResult{Entity: opts.Entity, Since: opts.Since, Rows: rows})
}

func changedRows(ctx context.Context, s *store.Store, entity string, cursor time.Time) ([]ChangedRow, error) {
	rows := []ChangedRow{}
	switch entity {
	case "contests":
		contests, err := s.ContestsUpdatedSince(ctx, cursor)
		if err != nil {
			return nil, err
		}
		for _, c := range contests {
			rows = append(rows, ChangedRow{ID: c.ContestID, UpdatedAt: c.UpdatedAt})
		}
	case "problems":
		problems, err := s.ProblemsUpdatedSince(ctx, cursor)
		if err != nil {
			return nil, err
		}
		for _, p := range problems {
			rows = append(rows, ChangedRow{ID: p.ProblemID, UpdatedAt: p.UpdatedAt})
		}
	case "users":
		users, err := s.UsersUpdatedSince(ctx, cursor)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			rows = append(rows, ChangedRow{ID: u.UserName, UpdatedAt: u.UpdatedAt})
		}
	case "difficulties":
		difficulties, err := s.DifficultiesUpdatedSince(ctx, cursor)
		if err != nil {
			return nil, err
		}
		for _, d := range difficulties {
			rows = append(rows, ChangedRow{ID: d.ProblemID, UpdatedAt: d.UpdatedAt})
		}
	}
	return rows, nil
}

func isValidEntity(entity string) bool {
	for _, e := range ValidEntities {
		if e == entity {
			return true
		}
	}
	return false
}
