package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares its summary against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Set a fixed run ID on the scenario or in env.IDs, otherwise the summary
// changes on every run.
func RunWithGolden(t *testing.T, scenario *Scenario, env Env) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, env)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares the summary of an existing result against a golden
// file without re-running.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(result.Summary()))
}
