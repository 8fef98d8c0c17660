package monitor

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motionchart/internal/condition"
	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/statechart"
	"github.com/roach88/motionchart/internal/testutil"
	"github.com/roach88/motionchart/internal/trinary"
)

func orGateChart() ir.ChartSpec {
	return ir.ChartSpec{
		Name: "or_gate",
		Nodes: []ir.NodeSpec{
			{Name: "muh", Kind: ir.KindTrueMonitor, Start: "muh3 or muh2"},
			{Name: "muh2", Kind: ir.KindTrueMonitor},
			{Name: "muh3", Kind: ir.KindTrueMonitor},
			{Name: "done", Kind: ir.KindEndMotion, Start: "muh"},
		},
	}
}

func TestBuildForwardReferences(t *testing.T) {
	eng, err := Build(orGateChart(), nil, WithEngineOptions(statechart.WithLogger(testutil.DiscardLogger())))
	require.NoError(t, err)

	assert.True(t, eng.Compiled())
	assert.Len(t, eng.Nodes(), 4)
	assert.Len(t, eng.Edges(), 3)

	muh, ok := eng.Lookup("muh")
	require.True(t, ok)
	assert.Equal(t, "muh3 or muh2", condition.Format(eng.Graph().StartCondition(muh), eng.Graph().Name))
}

func TestBuildRunsToCompletion(t *testing.T) {
	eng, err := Build(orGateChart(), nil, WithEngineOptions(statechart.WithLogger(testutil.DiscardLogger())))
	require.NoError(t, err)

	var out statechart.Outcome
	for i := 0; i < 4; i++ {
		out, err = eng.Tick()
		require.NoError(t, err)
	}
	assert.Equal(t, statechart.StatusCompleted, out.Status)
	assert.Equal(t, int64(4), out.Tick)
}

func TestBuildPrintOutput(t *testing.T) {
	var buf bytes.Buffer
	spec := ir.ChartSpec{
		Name: "hello",
		Nodes: []ir.NodeSpec{
			{Name: "cow", Kind: ir.KindPrint, Message: "muh"},
			{Name: "done", Kind: ir.KindEndMotion, Start: "cow"},
		},
	}

	eng, err := Build(spec, nil, WithOutput(&buf), WithEngineOptions(statechart.WithLogger(testutil.DiscardLogger())))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := eng.Tick()
		require.NoError(t, err)
	}
	assert.Equal(t, "muh\n", buf.String())
	assert.True(t, eng.IsEndMotion())
}

func TestBuildCompletionPolicy(t *testing.T) {
	spec := ir.ChartSpec{
		Name:       "either",
		Completion: ir.CompletionAny,
		Nodes: []ir.NodeSpec{
			{Name: "fast", Kind: ir.KindEndMotion},
			{Name: "never", Kind: ir.KindEndMotion, Start: "false"},
		},
	}

	eng, err := Build(spec, nil, WithEngineOptions(statechart.WithLogger(testutil.DiscardLogger())))
	require.NoError(t, err)
	assert.Equal(t, statechart.CompletionAny, eng.Policy())

	// Caller options override the chart.
	eng, err = Build(spec, nil, WithEngineOptions(
		statechart.WithLogger(testutil.DiscardLogger()),
		statechart.WithCompletionPolicy(statechart.CompletionAll),
	))
	require.NoError(t, err)
	assert.Equal(t, statechart.CompletionAll, eng.Policy())
}

func TestBuildCancelMotionError(t *testing.T) {
	spec := ir.ChartSpec{
		Name: "cancel",
		Nodes: []ir.NodeSpec{
			{Name: "muh", Kind: ir.KindTrueMonitor},
			{Name: "done", Kind: ir.KindCancelMotion, Error: "test", Start: "muh"},
		},
	}

	eng, err := Build(spec, nil, WithEngineOptions(statechart.WithLogger(testutil.DiscardLogger())))
	require.NoError(t, err)

	var out statechart.Outcome
	for i := 0; i < 3; i++ {
		out, err = eng.Tick()
		require.NoError(t, err)
	}
	assert.Equal(t, statechart.StatusAborted, out.Status)
	assert.EqualError(t, out.Err, "test")
}

func TestBuildEndCondition(t *testing.T) {
	spec := ir.ChartSpec{
		Name: "ends",
		Nodes: []ir.NodeSpec{
			{Name: "a", Kind: ir.KindTrueMonitor, End: "b"},
			{Name: "b", Kind: ir.KindConstMonitor, Value: "false"},
		},
	}

	eng, err := Build(spec, nil, WithEngineOptions(statechart.WithLogger(testutil.DiscardLogger())))
	require.NoError(t, err)

	a, _ := eng.Lookup("a")
	b, _ := eng.Lookup("b")
	assert.Equal(t, []statechart.Edge{{From: b, To: a}}, eng.Edges())
	_, err = eng.Tick()
	require.NoError(t, err)
	_, err = eng.Tick()
	require.NoError(t, err)
	assert.Equal(t, trinary.False, eng.ObservationState(b))
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		spec    ir.ChartSpec
		wantErr string
	}{
		{
			name:    "unknown kind",
			spec:    ir.ChartSpec{Name: "c", Nodes: []ir.NodeSpec{{Name: "a", Kind: "teleport"}}},
			wantErr: `unknown kind "teleport"`,
		},
		{
			name: "duplicate node",
			spec: ir.ChartSpec{Name: "c", Nodes: []ir.NodeSpec{
				{Name: "a", Kind: ir.KindTrueMonitor},
				{Name: "a", Kind: ir.KindTrueMonitor},
			}},
			wantErr: "DUPLICATE_NODE",
		},
		{
			name:    "unknown reference",
			spec:    ir.ChartSpec{Name: "c", Nodes: []ir.NodeSpec{{Name: "a", Kind: ir.KindTrueMonitor, Start: "ghost"}}},
			wantErr: `unknown node "ghost"`,
		},
		{
			name:    "syntax error",
			spec:    ir.ChartSpec{Name: "c", Nodes: []ir.NodeSpec{{Name: "a", Kind: ir.KindTrueMonitor, End: "a and"}}},
			wantErr: "end:",
		},
		{
			name:    "bad completion",
			spec:    ir.ChartSpec{Name: "c", Completion: "most", Nodes: []ir.NodeSpec{{Name: "a", Kind: ir.KindTrueMonitor}}},
			wantErr: "invalid completion policy",
		},
		{
			name:    "empty chart",
			spec:    ir.ChartSpec{Name: "c"},
			wantErr: "EMPTY_GRAPH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.spec, nil, WithEngineOptions(statechart.WithLogger(testutil.DiscardLogger())))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildCustomKind(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("gripper_closed", func(ir.NodeSpec, Env) (statechart.Behavior, error) {
		return FuncMonitor{Name: "gripper_closed", Fn: func(w any) trinary.Value {
			return trinary.FromBool(w.(bool))
		}}, nil
	}))

	spec := ir.ChartSpec{
		Name: "grip",
		Nodes: []ir.NodeSpec{
			{Name: "closed", Kind: "gripper_closed"},
			{Name: "done", Kind: ir.KindEndMotion, Start: "closed"},
		},
	}

	eng, err := Build(spec, true, WithRegistry(r), WithEngineOptions(statechart.WithLogger(testutil.DiscardLogger())))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := eng.Tick()
		require.NoError(t, err)
	}
	assert.True(t, eng.IsEndMotion())
}
