package harness

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/tabledao/internal/record"
)

// regexpValue marks an expected value that is a pattern: {regexp:...}.
var regexpValue = regexp.MustCompile(`^\{regexp:(.+)\}$`)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Step action that failed
	Table    string   // Table the rows came from
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Records  []string // Rows the assertion saw
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s on %s\n", e.Type, e.Table)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)

	if len(e.Records) > 0 {
		fmt.Fprintf(&buf, "\n\nRecords:")
		for i, rec := range e.Records {
			fmt.Fprintf(&buf, "\n  [%d] %s", i+1, rec)
		}
	}
	return buf.String()
}

// IsAssertion returns true if err is an assertion failure.
func IsAssertion(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}

// ValueMatches reports whether actual satisfies expected. Plain values are
// compared ignoring case. An expected value of the form {regexp:PATTERN}
// must match the whole of actual, ignoring case.
func ValueMatches(expected, actual string) (bool, error) {
	m := regexpValue.FindStringSubmatch(expected)
	if m == nil {
		return strings.EqualFold(expected, actual), nil
	}
	re, err := regexp.Compile(`^(?i:` + m[1] + `)$`)
	if err != nil {
		return false, fmt.Errorf("invalid pattern in %q: %w", expected, err)
	}
	return re.MatchString(actual), nil
}

// AssertRows checks that at least one of recs holds every expected value.
func AssertRows(table string, recs []any, expected map[string]string) error {
	cols := sortedKeys(expected)
	if len(recs) == 0 {
		return &AssertionError{
			Type:     ActionAssertRows,
			Table:    table,
			Expected: "a row with " + formatExpected(cols, expected),
			Actual:   "no rows",
		}
	}
	if err := checkColumns(ActionAssertRows, table, recs[0], cols); err != nil {
		return err
	}

	for _, rec := range recs {
		mismatch, err := firstMismatch(rec, cols, expected)
		if err != nil {
			return err
		}
		if mismatch == "" {
			return nil
		}
	}
	return &AssertionError{
		Type:     ActionAssertRows,
		Table:    table,
		Expected: "a row with " + formatExpected(cols, expected),
		Actual:   fmt.Sprintf("none of %d rows match", len(recs)),
		Records:  describeAll(recs),
	}
}

// AssertRow checks that rec holds every expected value. A nil rec fails.
func AssertRow(table string, rec any, expected map[string]string) error {
	return assertRow(ActionAssertRow, table, rec, expected)
}

// AssertValue checks one column of rec. A nil expected value means null.
func AssertValue(table string, rec any, column string, expected *string) error {
	want := record.Null
	if expected != nil {
		want = *expected
	}
	return assertRow(ActionAssertValue, table, rec, map[string]string{column: want})
}

func assertRow(kind, table string, rec any, expected map[string]string) error {
	cols := sortedKeys(expected)
	if isNil(rec) {
		return &AssertionError{
			Type:     kind,
			Table:    table,
			Expected: "a row with " + formatExpected(cols, expected),
			Actual:   "no row found",
		}
	}
	if err := checkColumns(kind, table, rec, cols); err != nil {
		return err
	}

	col, err := firstMismatch(rec, cols, expected)
	if err != nil {
		return err
	}
	if col == "" {
		return nil
	}
	actual, _ := valueOf(rec, col)
	return &AssertionError{
		Type:     kind,
		Table:    table,
		Expected: fmt.Sprintf("column %s = '%s'", col, expected[col]),
		Actual:   fmt.Sprintf("column %s actual value '%s'", col, actual),
		Records:  describeAll([]any{rec}),
	}
}

// checkColumns fails when rec has no column for one of cols.
func checkColumns(kind, table string, rec any, cols []string) error {
	for _, col := range cols {
		_, err := record.Get(rec, col)
		if record.IsFieldNotFound(err) {
			return &AssertionError{
				Type:     kind,
				Table:    table,
				Expected: "column " + col,
				Actual:   fmt.Sprintf("column %s not found", col),
				Records:  describeAll([]any{rec}),
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// firstMismatch returns the first column whose value does not match, or ""
// when all match.
func firstMismatch(rec any, cols []string, expected map[string]string) (string, error) {
	for _, col := range cols {
		actual, err := valueOf(rec, col)
		if err != nil {
			return "", err
		}
		ok, err := ValueMatches(expected[col], actual)
		if err != nil {
			return "", err
		}
		if !ok {
			return col, nil
		}
	}
	return "", nil
}

// valueOf returns the string form of a column value, "null" for nil.
func valueOf(rec any, col string) (string, error) {
	s, ok, err := record.GetString(rec, col)
	if err != nil {
		return "", err
	}
	if !ok {
		return record.Null, nil
	}
	return s, nil
}

func describeAll(recs []any) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, describe(rec))
	}
	return out
}

func describe(rec any) string {
	kv, err := record.All(rec)
	if err != nil {
		return fmt.Sprintf("%v", rec)
	}
	return kv.String()
}

func formatExpected(cols []string, expected map[string]string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = col + "=" + expected[col]
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
