package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motionchart/internal/ir"
)

func compileString(t *testing.T, src, path string) (*ir.ChartSpec, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileChart(v.LookupPath(cue.ParsePath(path)))
}

func TestCompileChartBasic(t *testing.T) {
	spec, err := compileString(t, `
		chart: pick: {
			description: "pick an object"
			completion:  "any"
			node: {
				muh:  {kind: "true_monitor", start: "muh3 or muh2"}
				muh2: kind: "true_monitor"
				muh3: kind: "true_monitor"
				done: {kind: "end_motion", start: "muh"}
			}
		}
	`, "chart.pick")
	require.NoError(t, err)

	assert.Equal(t, "pick", spec.Name)
	assert.Equal(t, "pick an object", spec.Description)
	assert.Equal(t, "any", spec.Completion)
	assert.Equal(t, []string{"muh", "muh2", "muh3", "done"}, spec.NodeNames(), "declaration order is kept")
	assert.Equal(t, "muh3 or muh2", spec.Nodes[0].Start)
	assert.Equal(t, ir.KindEndMotion, spec.Nodes[3].Kind)
}

func TestCompileChartPayloadFields(t *testing.T) {
	spec, err := compileString(t, `
		chart: payload: node: {
			cow:    {kind: "print", message: "muh"}
			sensor: {kind: "const_monitor", value: false}
			lazy:   {kind: "const_monitor", value: "unknown"}
			boom:   {kind: "cancel_motion", error: "test", start: "cow", end: "not sensor"}
		}
	`, "chart.payload")
	require.NoError(t, err)

	require.Len(t, spec.Nodes, 4)
	assert.Equal(t, "muh", spec.Nodes[0].Message)
	assert.Equal(t, "false", spec.Nodes[1].Value)
	assert.Equal(t, "unknown", spec.Nodes[2].Value)
	assert.Equal(t, "test", spec.Nodes[3].Error)
	assert.Equal(t, "not sensor", spec.Nodes[3].End)
}

func TestCompileChartQuotedNames(t *testing.T) {
	spec, err := compileString(t, `
		chart: "arm/left": node: {
			"gripper/closed": kind: "true_monitor"
		}
	`, `chart."arm/left"`)
	require.NoError(t, err)

	assert.Equal(t, "arm/left", spec.Name)
	assert.Equal(t, "gripper/closed", spec.Nodes[0].Name)
}

func TestCompileChartErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		path    string
		wantErr string
	}{
		{
			name:    "missing node struct",
			src:     `chart: empty: description: "nothing"`,
			path:    "chart.empty",
			wantErr: "at least one node is required",
		},
		{
			name:    "empty node struct",
			src:     `chart: empty: node: {}`,
			path:    "chart.empty",
			wantErr: "at least one node is required",
		},
		{
			name:    "missing kind",
			src:     `chart: c: node: a: start: "true"`,
			path:    "chart.c",
			wantErr: "node.a.kind: kind is required",
		},
		{
			name:    "unknown field",
			src:     `chart: c: node: a: {kind: "true_monitor", priority: 3}`,
			path:    "chart.c",
			wantErr: "node.a.priority: unknown node field",
		},
		{
			name:    "node not a struct",
			src:     `chart: c: node: a: "true_monitor"`,
			path:    "chart.c",
			wantErr: "node must be a struct",
		},
		{
			name:    "value wrong type",
			src:     `chart: c: node: a: {kind: "const_monitor", value: 1}`,
			path:    "chart.c",
			wantErr: "value must be a bool or string",
		},
		{
			name:    "kind wrong type",
			src:     `chart: c: node: a: kind: 5`,
			path:    "chart.c",
			wantErr: "kind must be a string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileString(t, tt.src, tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var ce *CompileError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "node", Message: "at least one node is required"}
	assert.Equal(t, "node: at least one node is required", err.Error())
}
