package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommandHarnessScenarios(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, harnessCharts, harnessScenarios)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ motion_statechart")
	assert.Contains(t, out, "✓ duplicate_name")
	assert.Contains(t, out, "Test Summary: 7 passed, 0 failed, 7 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandFilter(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, harnessCharts, harnessScenarios, "--filter", "print_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "print_chain", resp.Data.Scenarios[0].Name)
}

func TestTestCommandUpdateWritesGolden(t *testing.T) {
	chartsDir, err := filepath.Abs(harnessCharts)
	require.NoError(t, err)

	scenariosDir := t.TempDir()
	src, err := os.ReadFile(filepath.Join(harnessScenarios, "print_chain.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(scenariosDir, "print_chain.yaml"), src, 0644))

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	_, _, err = execute(cmd, chartsDir, scenariosDir, "--update")
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(scenariosDir, "golden", "print_chain.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(harnessScenarios, "golden", "print_chain.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))

	// A second run compares against the fresh golden file.
	cmd = NewTestCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, chartsDir, scenariosDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	chartsDir, err := filepath.Abs(harnessCharts)
	require.NoError(t, err)

	scenariosDir := t.TempDir()
	src, err := os.ReadFile(filepath.Join(harnessScenarios, "motion_statechart.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(scenariosDir, "motion_statechart.yaml"), src, 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(scenariosDir, "golden"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(scenariosDir, "golden", "motion_statechart.golden"), []byte("{}"), 0644))

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, chartsDir, scenariosDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ motion_statechart")
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandFailingScenario(t *testing.T) {
	chartsDir, err := filepath.Abs(harnessCharts)
	require.NoError(t, err)

	scenariosDir := t.TempDir()
	scenario := `name: wrong_ticks
description: "expects the wrong tick count"
chart: motion_statechart
expect:
  status: completed
  ticks: 9
`
	require.NoError(t, os.WriteFile(filepath.Join(scenariosDir, "wrong_ticks.yaml"), []byte(scenario), 0644))

	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, chartsDir, scenariosDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Error  *CLIError  `json:"error"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Contains(t, resp.Data.Scenarios[0].Errors, "expected 9 ticks, got 4")
}

func TestTestCommandInvalidScenarioFile(t *testing.T) {
	chartsDir, err := filepath.Abs(harnessCharts)
	require.NoError(t, err)

	scenariosDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(scenariosDir, "broken.yaml"), []byte("name: broken\nbogus: true\n"), 0644))

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, chartsDir, scenariosDir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommandMissingDirectories(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, "/nonexistent/charts", harnessScenarios)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "charts directory not found")

	cmd = NewTestCommand(&RootOptions{Format: "text"})
	_, _, err = execute(cmd, harnessCharts, "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandNoScenarios(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, harnessCharts, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("s", "golden", "a.golden"), goldenFilePath(filepath.Join("s", "a.yaml")))
}
