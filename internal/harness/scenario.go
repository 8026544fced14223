package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of table operations and assertions.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Table is the default table for steps that name none.
	Table string `yaml:"table,omitempty"`

	// Setup steps run before Steps. Any failure in setup aborts the run.
	Setup []Step `yaml:"setup,omitempty"`

	// Steps are executed in order. Assertion failures are recorded and the
	// run continues.
	Steps []Step `yaml:"steps"`

	// RunID is an optional fixed run ID for deterministic reports.
	RunID string `yaml:"run_id,omitempty"`
}

// Step is one table operation or assertion.
type Step struct {
	// Action is one of the Action constants.
	Action string `yaml:"action"`

	// Table overrides the scenario table.
	Table string `yaml:"table,omitempty"`

	// Values holds column values for insert.
	Values map[string]string `yaml:"values,omitempty"`

	// Where selects rows. Each row is [column, value] or
	// [column, operator, value].
	Where [][]string `yaml:"where,omitempty"`

	// Expect holds the column values an assertion requires. Values are
	// compared ignoring case; {regexp:...} matches a pattern instead.
	Expect map[string]string `yaml:"expect,omitempty"`

	// Column and Value are used by update and assert_value. A nil Value
	// means null.
	Column string  `yaml:"column,omitempty"`
	Value  *string `yaml:"value,omitempty"`

	// ID is the row id for delete.
	ID string `yaml:"id,omitempty"`

	// Count is the expected row count. For wait, zero means at least one row.
	Count *int64 `yaml:"count,omitempty"`

	// Timeout and Interval override the wait defaults.
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
}

// Step actions.
const (
	ActionInsert      = "insert"
	ActionUpdate      = "update"
	ActionDelete      = "delete"
	ActionTruncate    = "truncate"
	ActionCount       = "count"
	ActionAssertRows  = "assert_rows"
	ActionAssertRow   = "assert_row"
	ActionAssertValue = "assert_value"
	ActionWait        = "wait"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i := range s.Setup {
		if err := validateStep(fmt.Sprintf("setup[%d]", i), s.Table, &s.Setup[i]); err != nil {
			return err
		}
	}
	for i := range s.Steps {
		if err := validateStep(fmt.Sprintf("steps[%d]", i), s.Table, &s.Steps[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateStep validates a single step based on its action.
func validateStep(where, table string, st *Step) error {
	if st.Action == "" {
		return fmt.Errorf("%s: action is required", where)
	}
	if st.Table == "" && table == "" {
		return fmt.Errorf("%s: table is required (set it on the step or the scenario)", where)
	}
	for i, row := range st.Where {
		if len(row) != 2 && len(row) != 3 {
			return fmt.Errorf("%s.where[%d]: want [column, value] or [column, operator, value], got %d cells", where, i, len(row))
		}
	}

	switch st.Action {
	case ActionInsert:
		if len(st.Values) == 0 {
			return fmt.Errorf("%s: values are required for insert", where)
		}
	case ActionUpdate:
		if st.Column == "" {
			return fmt.Errorf("%s: column is required for update", where)
		}
	case ActionDelete:
		if st.ID == "" {
			return fmt.Errorf("%s: id is required for delete", where)
		}
	case ActionTruncate, ActionWait:
	case ActionCount:
		if st.Count == nil {
			return fmt.Errorf("%s: count is required for count", where)
		}
	case ActionAssertRows:
		if len(st.Expect) == 0 && st.Count == nil {
			return fmt.Errorf("%s: expect or count is required for assert_rows", where)
		}
	case ActionAssertRow:
		if len(st.Expect) == 0 {
			return fmt.Errorf("%s: expect is required for assert_row", where)
		}
	case ActionAssertValue:
		if st.Column == "" {
			return fmt.Errorf("%s: column is required for assert_value", where)
		}
	default:
		return fmt.Errorf("%s: unknown action %q", where, st.Action)
	}

	if st.Count != nil && *st.Count < 0 {
		return fmt.Errorf("%s: count must not be negative", where)
	}
	if st.Timeout < 0 || st.Interval < 0 {
		return fmt.Errorf("%s: timeout and interval must not be negative", where)
	}
	return nil
}

// tableOf returns the step table, falling back to the scenario table.
func (s *Scenario) tableOf(st *Step) string {
	if st.Table != "" {
		return st.Table
	}
	return s.Table
}
