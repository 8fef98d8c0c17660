package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/motionchart/internal/compiler"
	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/monitor"
	"github.com/roach88/motionchart/internal/runner"
	"github.com/roach88/motionchart/internal/store"
	"github.com/roach88/motionchart/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the chart package and pick the scenario's chart
//  2. Validate the chart (and stop there if the scenario expects rejection)
//  3. Run it with a fixed run ID into a fresh in-memory store
//  4. Read the run and trace back from the store
//  5. Check the expect clause and assertions
//
// The returned error is reserved for problems with the scenario itself, such
// as a missing chart. Expectation failures are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	chart, err := loadChart(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()

	for _, ve := range compiler.Validate(&chart, monitor.DefaultRegistry) {
		result.Validation = append(result.Validation, ve.Code)
		if len(scenario.Expect.Validation) == 0 {
			result.AddError(fmt.Sprintf("chart %s is invalid: %v", chart.Name, ve))
		}
	}
	if len(scenario.Expect.Validation) > 0 {
		checkValidation(scenario.Expect.Validation, result)
		return result, nil
	}
	if !result.Pass {
		return result, nil
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	maxTicks := scenario.MaxTicks
	if maxTicks == 0 {
		maxTicks = DefaultMaxTicks
	}
	r := runner.New(
		runner.WithLogger(testutil.DiscardLogger()),
		runner.WithRate(0),
		runner.WithMaxTicks(maxTicks),
		runner.WithSinks(st),
		runner.WithIDGenerator(testutil.NewFixedRunID(scenario.RunID)),
	)

	var out bytes.Buffer
	res, runErr := r.RunChart(ctx, chart, nil, monitor.WithOutput(&out))
	if res == nil {
		return nil, fmt.Errorf("run chart %s: %w", chart.Name, runErr)
	}
	if runErr != nil && !runner.IsAbortError(runErr) && !runner.IsTickQuotaError(runErr) {
		return nil, fmt.Errorf("run chart %s: %w", chart.Name, runErr)
	}

	if result.Run, err = st.ReadRun(ctx, res.Run.ID); err != nil {
		return nil, fmt.Errorf("read run %s: %w", res.Run.ID, err)
	}
	if result.Trace, err = st.ReadTrace(ctx, res.Run.ID, nil); err != nil {
		return nil, fmt.Errorf("read trace of run %s: %w", res.Run.ID, err)
	}
	result.Output = out.String()

	checkExpect(scenario.Expect, result)
	for _, msg := range EvaluateAssertions(result.Trace, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// loadChart compiles the scenario's chart package and returns its chart.
// Errors in other charts of the package are ignored.
func loadChart(scenario *Scenario) (ir.ChartSpec, error) {
	loaded, errs := compiler.LoadCharts(scenario.Charts, compiler.LoadModeCollectAll)
	if loaded == nil {
		return ir.ChartSpec{}, fmt.Errorf("load charts from %s: %w", scenario.Charts, errors.Join(errs...))
	}
	chart, ok := loaded.Chart(scenario.Chart)
	if !ok {
		if len(errs) > 0 {
			return ir.ChartSpec{}, fmt.Errorf("chart %q not loaded from %s: %w", scenario.Chart, scenario.Charts, errors.Join(errs...))
		}
		return ir.ChartSpec{}, fmt.Errorf("chart %q not found in %s (have %v)", scenario.Chart, scenario.Charts, loaded.ChartNames())
	}
	return chart, nil
}

func checkExpect(want Expect, result *Result) {
	run := result.Run
	if run.Status != want.Status {
		msg := fmt.Sprintf("expected status %s, got %s", want.Status, run.Status)
		if run.Error != "" {
			msg += fmt.Sprintf(" (error: %s)", run.Error)
		}
		result.AddError(msg)
	}
	if want.Ticks != 0 && run.Ticks != want.Ticks {
		result.AddError(fmt.Sprintf("expected %d ticks, got %d", want.Ticks, run.Ticks))
	}
	if want.Error != "" && run.Error != want.Error {
		result.AddError(fmt.Sprintf("expected error %q, got %q", want.Error, run.Error))
	}
	if want.AbortedBy != "" && run.AbortedBy != ir.NormalizeName(want.AbortedBy) {
		result.AddError(fmt.Sprintf("expected abort by %s, got %q", want.AbortedBy, run.AbortedBy))
	}
	if want.Output != nil && result.Output != *want.Output {
		result.AddError(fmt.Sprintf("expected output %q, got %q", *want.Output, result.Output))
	}
}

// checkValidation compares the reported codes with the expected ones as sets.
func checkValidation(want []string, result *Result) {
	got := slices.Clone(result.Validation)
	slices.Sort(got)
	got = slices.Compact(got)

	expected := slices.Clone(want)
	slices.Sort(expected)
	expected = slices.Compact(expected)

	if !slices.Equal(got, expected) {
		result.AddError(fmt.Sprintf("expected validation codes %v, got %v", expected, got))
	}
}
