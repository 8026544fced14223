package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/roach88/tabledao/internal/condition"
	"github.com/roach88/tabledao/internal/dao"
	"github.com/roach88/tabledao/internal/record"
	"github.com/roach88/tabledao/internal/registry"
)

// Env is what a scenario runs against.
type Env struct {
	// Registry resolves table names. Required.
	Registry *registry.Registry

	// Executor runs the statements. Required.
	Executor dao.Executor

	// Clock drives wait polling. Defaults to the system clock.
	Clock Clock

	// IDs generates the run ID when the scenario has none.
	// Defaults to UUIDv7Generator.
	IDs IDGenerator

	// Logger receives run progress and statement logs.
	// Defaults to a discarding logger.
	Logger *slog.Logger

	// RowLimit caps finds with no where rows.
	RowLimit int

	// WaitTimeout and WaitInterval are the wait defaults.
	WaitTimeout  time.Duration
	WaitInterval time.Duration
}

// Harness runs the steps of one scenario.
type Harness struct {
	env      Env
	scenario *Scenario
	tables   map[string]dao.Table
}

// Run executes a scenario and returns the result.
//
// Assertion failures and wait timeouts fail their step and the run goes on.
// Any other error, including every error during setup, aborts the run.
func Run(ctx context.Context, scenario *Scenario, env Env) (*Result, error) {
	if env.Registry == nil || env.Executor == nil {
		return nil, errors.New("harness: registry and executor are required")
	}
	if env.Clock == nil {
		env.Clock = systemClock{}
	}
	if env.IDs == nil {
		env.IDs = UUIDv7Generator{}
	}
	if env.Logger == nil {
		env.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	runID := scenario.RunID
	if runID == "" {
		runID = env.IDs.Generate()
	}
	h := &Harness{env: env, scenario: scenario, tables: make(map[string]dao.Table)}
	result := NewResult(scenario.Name, runID)
	logger := env.Logger.With("scenario", scenario.Name, "run_id", runID)

	for i := range scenario.Setup {
		st := &scenario.Setup[i]
		if _, err := h.step(ctx, st); err != nil {
			return nil, fmt.Errorf("setup[%d] (%s %s): %w", i, st.Action, scenario.tableOf(st), err)
		}
	}

	for i := range scenario.Steps {
		st := &scenario.Steps[i]
		table := scenario.tableOf(st)
		detail, err := h.step(ctx, st)
		sr := StepResult{Index: i + 1, Action: st.Action, Table: table, Pass: true, Detail: detail}
		if err != nil {
			if !IsAssertion(err) && !IsTimeout(err) {
				return nil, fmt.Errorf("step %d (%s %s): %w", i+1, st.Action, table, err)
			}
			sr.Pass = false
			sr.Error = err.Error()
		}
		logger.Debug("step done", "index", sr.Index, "action", sr.Action, "table", table, "pass", sr.Pass)
		result.AddStep(sr)
	}

	logger.Info("scenario done", "pass", result.Pass, "steps", len(result.Steps), "failed", result.Failed())
	return result, nil
}

// step runs one step and returns a short detail for the report.
func (h *Harness) step(ctx context.Context, st *Step) (string, error) {
	table := h.scenario.tableOf(st)
	tbl, err := h.open(table)
	if err != nil {
		return "", err
	}

	switch st.Action {
	case ActionInsert:
		rec := tbl.NewRecord()
		for _, col := range sortedKeys(st.Values) {
			v := st.Values[col]
			if strings.EqualFold(v, record.Null) {
				continue
			}
			if err := record.Set(rec, col, v); err != nil {
				return "", err
			}
		}
		if err := tbl.InsertRecord(ctx, rec); err != nil {
			return "", err
		}
		return describe(rec), nil

	case ActionUpdate:
		value, err := ColumnValue(tbl, st.Column, st.Value)
		if err != nil {
			return "", err
		}
		chain, err := condition.FromTable(st.Where)
		if err != nil {
			return "", err
		}
		n, err := tbl.UpdateByColumnValue(ctx, st.Column, value, chain)
		if err != nil {
			return "", err
		}
		return rowsDetail(n), expectCount(st, table, n)

	case ActionDelete:
		id, err := ColumnValue(tbl, tbl.IDColumn(), &st.ID)
		if err != nil {
			return "", err
		}
		n, err := tbl.Delete(ctx, id)
		if err != nil {
			return "", err
		}
		return rowsDetail(n), expectCount(st, table, n)

	case ActionTruncate:
		return "", tbl.Truncate(ctx)

	case ActionCount:
		n, err := tbl.Count(ctx)
		if err != nil {
			return "", err
		}
		return rowsDetail(n), expectCount(st, table, n)

	case ActionAssertRows:
		recs, err := h.find(ctx, tbl, st)
		if err != nil {
			return "", err
		}
		detail := rowsDetail(int64(len(recs)))
		if err := expectCount(st, table, int64(len(recs))); err != nil {
			return detail, err
		}
		if len(st.Expect) == 0 {
			return detail, nil
		}
		return detail, AssertRows(table, recs, st.Expect)

	case ActionAssertRow:
		recs, err := h.find(ctx, tbl, st)
		if err != nil {
			return "", err
		}
		return "", AssertRow(table, firstOf(recs), st.Expect)

	case ActionAssertValue:
		recs, err := h.find(ctx, tbl, st)
		if err != nil {
			return "", err
		}
		return "", AssertValue(table, firstOf(recs), st.Column, st.Value)

	case ActionWait:
		w := NewWaiter(
			firstPositive(st.Timeout, h.env.WaitTimeout),
			firstPositive(st.Interval, h.env.WaitInterval),
			h.env.Clock,
		)
		count := 0
		if st.Count != nil {
			count = int(*st.Count)
		}
		recs, err := WaitRows(ctx, w, table, count, func(ctx context.Context) ([]any, error) {
			return h.find(ctx, tbl, st)
		})
		return rowsDetail(int64(len(recs))), err

	default:
		return "", fmt.Errorf("unknown action %q", st.Action)
	}
}

// open resolves a table once per run.
func (h *Harness) open(table string) (dao.Table, error) {
	key := strings.ToLower(strings.TrimSpace(table))
	if tbl, ok := h.tables[key]; ok {
		return tbl, nil
	}
	tbl, err := h.env.Registry.Open(table, h.env.Executor,
		dao.WithLogger(h.env.Logger),
		dao.WithRowLimit(h.env.RowLimit))
	if err != nil {
		return nil, err
	}
	h.tables[key] = tbl
	return tbl, nil
}

func (h *Harness) find(ctx context.Context, tbl dao.Table, st *Step) ([]any, error) {
	chain, err := condition.FromTable(st.Where)
	if err != nil {
		return nil, err
	}
	return tbl.FindRecords(ctx, chain)
}

// ColumnValue converts raw to the type of the record field behind column,
// so it binds the way the stored value does. nil or "null" is nil.
func ColumnValue(tbl dao.Table, column string, raw *string) (any, error) {
	if raw == nil || strings.EqualFold(*raw, record.Null) {
		return nil, nil
	}
	rec := tbl.NewRecord()
	if err := record.Set(rec, column, *raw); err != nil {
		return nil, err
	}
	return record.Get(rec, column)
}

func expectCount(st *Step, table string, n int64) error {
	if st.Count == nil || *st.Count == n {
		return nil
	}
	return &AssertionError{
		Type:     st.Action,
		Table:    table,
		Expected: rowsDetail(*st.Count),
		Actual:   rowsDetail(n),
	}
}

func rowsDetail(n int64) string {
	if n == 1 {
		return "1 row"
	}
	return fmt.Sprintf("%d rows", n)
}

func firstOf(recs []any) any {
	if len(recs) == 0 {
		return nil
	}
	return recs[0]
}

func firstPositive(a, b time.Duration) time.Duration {
	if a > 0 {
		return a
	}
	return b
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
