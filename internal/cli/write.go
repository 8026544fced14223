package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tabledao/internal/example"
	"github.com/roach88/tabledao/internal/harness"
	"github.com/roach88/tabledao/internal/record"
)

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <table> <column=value>...",
		Short: "Insert one row",
		Long: `Insert one row. Values are converted to the record field types;
date-times use the layout 2000-10-10T10:10:10. Columns left out, or given
the value null, are stored as null.`,
		Example:       `  tabledao insert online_log record_id=5 env_id=0000000005 env_timein=2000-01-01T00:00:00`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			values, err := parseAssignments(args[1:])
			if err != nil {
				return s.out.Fail(err)
			}
			tbl, err := s.table(args[0])
			if err != nil {
				return s.out.Fail(err)
			}

			rec := tbl.NewRecord()
			cols := make([]string, 0, len(values))
			for col := range values {
				cols = append(cols, col)
			}
			sort.Strings(cols)
			for _, col := range cols {
				if strings.EqualFold(values[col], record.Null) {
					continue
				}
				if err := record.Set(rec, col, values[col]); err != nil {
					return s.out.Fail(err)
				}
			}
			if err := tbl.InsertRecord(cmd.Context(), rec); err != nil {
				return s.out.Fail(err)
			}

			kv, err := record.All(rec)
			if err != nil {
				return s.out.Fail(err)
			}
			if s.out.Format == "json" {
				return s.out.Success(kv.Map())
			}
			return s.out.Success("inserted " + kv.String())
		},
	}
}

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	Where []string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <table> <column> <value>",
		Short: "Set a column on matching rows",
		Long: `Set a column on the rows matching --where. With no conditions every
row is updated. The value null stores null.`,
		Example:       `  tabledao update online_log txn_source TNX_5 --where env_id=0000000005`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			tbl, err := s.table(args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			value, err := harness.ColumnValue(tbl, args[1], &args[2])
			if err != nil {
				return s.out.Fail(err)
			}
			chain, err := parseWhere(opts.Where)
			if err != nil {
				return s.out.Fail(err)
			}
			n, err := tbl.UpdateByColumnValue(cmd.Context(), args[1], value, chain)
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Success(n)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "condition: column=value or \"column operator value\" (repeatable)")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <table> <id>",
		Short:         "Delete one row by id",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			tbl, err := s.table(args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			id, err := harness.ColumnValue(tbl, tbl.IDColumn(), &args[1])
			if err != nil {
				return s.out.Fail(err)
			}
			n, err := tbl.Delete(cmd.Context(), id)
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Success(n)
		},
	}
}

// NewTruncateCommand creates the truncate command.
func NewTruncateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "truncate <table>",
		Short:         "Remove every row of a table",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			tbl, err := s.table(args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			if err := tbl.Truncate(cmd.Context()); err != nil {
				return s.out.Fail(err)
			}
			return s.out.Success("truncated " + tbl.TableName())
		},
	}
}

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Fixture bool
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the example tables",
		Long: `Create the example and online_log tables in a SQLite database.
With --fixture, online_log is seeded with four rows.`,
		Example:       `  tabledao init --db ./data.db --fixture`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.Exec(cmd.Context(), example.SchemaSQL); err != nil {
				return s.out.Fail(fmt.Errorf("apply schema: %w", err))
			}
			msg := "schema applied"
			if opts.Fixture {
				if err := s.store.Exec(cmd.Context(), example.FixtureSQL); err != nil {
					return s.out.Fail(fmt.Errorf("load fixture: %w", err))
				}
				msg += ", fixture loaded"
			}
			return s.out.Success(msg)
		},
	}

	cmd.Flags().BoolVar(&opts.Fixture, "fixture", false, "seed online_log with the fixture rows")

	return cmd
}

// parseAssignments parses column=value arguments.
func parseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		col, value, ok := strings.Cut(arg, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("expected column=value, got %q", arg)
		}
		if _, dup := values[col]; dup {
			return nil, fmt.Errorf("column %s given twice", col)
		}
		values[col] = value
	}
	return values, nil
}
