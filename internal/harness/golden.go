package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/motionchart/internal/ir"
)

// GoldenDir is where golden snapshots live, relative to the package under
// test. Scenario files sit one directory up.
const GoldenDir = "testdata/scenarios/golden"

// Snapshot renders a scenario result as canonical JSON.
//
// The snapshot holds the run outcome, print output, validation codes and
// every tick of the trace. Run IDs are fixed by the harness, so a snapshot
// is byte-identical across executions.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	trace := make(ir.Array, len(result.Trace))
	for i, t := range result.Trace {
		trace[i] = ir.TickValue(t)
	}

	return ir.MarshalCanonical(ir.Object{
		"scenario":   ir.String(scenario.Name),
		"chart":      ir.String(scenario.Chart),
		"run_id":     ir.String(result.Run.ID),
		"status":     ir.String(result.Run.Status),
		"ticks":      ir.Int(result.Run.Ticks),
		"error":      ir.String(result.Run.Error),
		"aborted_by": ir.String(result.Run.AbortedBy),
		"output":     ir.String(result.Output),
		"validation": ir.Strings(result.Validation),
		"trace":      trace,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/scenarios/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can assert on it further. Expectation
// failures are not test failures here; check result.Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the scenario's golden
// file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
