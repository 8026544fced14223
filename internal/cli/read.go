package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tabledao/internal/condition"
	"github.com/roach88/tabledao/internal/record"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List resolvable tables",
		Long: `List the tables that resolve to a registered handler within the
configured namespaces.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			tables := s.registry.Tables()
			if s.out.Format == "json" {
				return s.out.Success(tables)
			}
			for _, t := range tables {
				fmt.Fprintln(s.out.Writer, t)
			}
			return nil
		},
	}
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count <table>",
		Short: "Count the rows of a table",
		Example: `  tabledao count online_log
  tabledao count online_log --db ./data.db --format json`,
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
			n, err := tbl.Count(cmd.Context())
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Success(n)
		},
	}
}

// FindOptions holds flags for the find command.
type FindOptions struct {
	*RootOptions
	Where []string
	Last  int
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find <table>",
		Short: "Find rows by conditions",
		Long: `Find rows of a table. Each --where is column=value or
"column operator value"; conditions are and-joined. With no conditions the
first rows by id are returned, up to the configured row limit.`,
		Example: `  tabledao find online_log --where env_id=0000000003
  tabledao find online_log --where "record_id > 1" --where "txn_source is null"
  tabledao find online_log --last 2`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "condition: column=value or \"column operator value\" (repeatable)")
	cmd.Flags().IntVar(&opts.Last, "last", 0, "return the last N rows by id instead")

	return cmd
}

func runFind(opts *FindOptions, table string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if opts.Last > 0 && len(opts.Where) > 0 {
		return s.out.Fail(fmt.Errorf("--last cannot be combined with --where"))
	}

	tbl, err := s.table(table)
	if err != nil {
		return s.out.Fail(err)
	}

	var recs []any
	if opts.Last > 0 {
		recs, err = tbl.FindLastRecords(cmd.Context(), opts.Last)
	} else {
		var chain *condition.Chain
		chain, err = parseWhere(opts.Where)
		if err != nil {
			return s.out.Fail(err)
		}
		s.out.VerboseLog("conditions: %s", chain)
		recs, err = tbl.FindRecords(cmd.Context(), chain)
	}
	if err != nil {
		return s.out.Fail(err)
	}
	return writeRecords(s.out, recs)
}

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Where []string
}

// RenderResult is the JSON payload of the render command.
type RenderResult struct {
	Conditions string `json:"conditions"`
	SQL        string `json:"sql"`
	NoMatch    bool   `json:"no_match"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render conditions as a SQL predicate",
		Long: `Render --where conditions to the predicate a find would use,
without touching the database.`,
		Example:       `  tabledao render --where "env_timein < 2000-01-01 00:00:01" --where saf_plan_id=PLAN_1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			chain, err := parseWhere(opts.Where)
			if err != nil {
				return out.Fail(err)
			}
			res, err := chain.Render()
			if err != nil {
				return out.Fail(err)
			}
			if out.Format == "json" {
				return out.Success(RenderResult{Conditions: chain.String(), SQL: res.SQL, NoMatch: res.NoMatch})
			}
			switch {
			case res.NoMatch:
				return out.Success("<no match>")
			case res.IsEmpty():
				return out.Success("<all>")
			default:
				return out.Success(res.SQL)
			}
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "condition: column=value or \"column operator value\" (repeatable)")

	return cmd
}

// parseWhere turns --where expressions into condition rows. An expression
// containing a space is "column operator value" (the value may contain
// spaces); otherwise it is column=value.
func parseWhere(exprs []string) (*condition.Chain, error) {
	rows := make([][]string, 0, len(exprs))
	for _, expr := range exprs {
		expr = strings.TrimSpace(expr)
		if col, rest, ok := strings.Cut(expr, " "); ok {
			op, value, ok := strings.Cut(strings.TrimSpace(rest), " ")
			if !ok {
				rows = append(rows, []string{expr})
				continue
			}
			rows = append(rows, []string{col, op, value})
			continue
		}
		col, value, ok := strings.Cut(expr, "=")
		if !ok {
			rows = append(rows, []string{expr})
			continue
		}
		rows = append(rows, []string{col, value})
	}
	return condition.FromTable(rows)
}

// writeRecords prints one record per line, or a JSON list of column maps.
func writeRecords(out *OutputFormatter, recs []any) error {
	if out.Format == "json" {
		rows := make([]map[string]any, 0, len(recs))
		for _, rec := range recs {
			kv, err := record.All(rec)
			if err != nil {
				return out.Fail(err)
			}
			rows = append(rows, kv.Map())
		}
		return out.Success(rows)
	}

	for _, rec := range recs {
		kv, err := record.All(rec)
		if err != nil {
			return out.Fail(err)
		}
		fmt.Fprintln(out.Writer, kv.String())
	}
	fmt.Fprintf(out.Writer, "(%d rows)\n", len(recs))
	return nil
}
