package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motionchart/internal/runner"
	"github.com/roach88/motionchart/internal/testutil"
)

const (
	harnessCharts    = "../harness/testdata/charts"
	harnessScenarios = "../harness/testdata/scenarios"
)

const validCharts = `
package charts

chart: pick: {
	description: "pick and place"
	node: {
		gripper: kind: "true_monitor"
		arm: {kind: "true_monitor", start: "gripper"}
		done: {kind: "end_motion", start: "arm"}
	}
}
`

// writeCharts writes a single-file CUE package and returns its directory.
func writeCharts(t *testing.T, src string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "charts")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "charts.cue"), []byte(src), 0644))
	return dir
}

// execute runs cmd with args and returns stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// recordRun runs chart from dir into the database at dbPath under runID.
func recordRun(t *testing.T, dir, chart, dbPath, runID string) string {
	t.Helper()
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		Chart:       chart,
		Database:    dbPath,
		MaxTicks:    runner.DefaultMaxTicks,
		IDGenerator: testutil.NewFixedRunID(runID),
	}
	stdout := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	_ = runMotion(opts, dir, cmd)
	return stdout.String()
}
