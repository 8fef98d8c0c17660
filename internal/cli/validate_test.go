package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidCharts(t *testing.T) {
	dir := writeCharts(t, validCharts)

	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All charts valid (1)")
}

func TestValidateReportsInvalidChart(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, harnessCharts)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "chart duplicate_name")
	assert.Contains(t, out, "E105")
}

func TestValidateJSONErrors(t *testing.T) {
	dir := writeCharts(t, `
package charts

chart: bad: node: {
	a: {kind: "teleport"}
	done: {kind: "end_motion", start: "missing"}
}
`)
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Error  *CLIError        `json:"error"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, []string{"bad"}, resp.Data.Charts)
	require.NotEmpty(t, resp.Data.Errors)
	for _, issue := range resp.Data.Errors {
		assert.Equal(t, "bad", issue.Chart)
		assert.NotEmpty(t, issue.Code)
	}
}

func TestValidateNonExistentDir(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, "/nonexistent/directory")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}

func TestValidateEmptyDir(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no CUE files found")
}

func TestValidateSyntaxError(t *testing.T) {
	dir := writeCharts(t, "package charts\n\nchart: {\n")
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
