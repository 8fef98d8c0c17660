package monitor

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/statechart"
	"github.com/roach88/motionchart/internal/trinary"
)

func TestKindsAndRoles(t *testing.T) {
	tests := []struct {
		b    statechart.Behavior
		kind string
		role statechart.Role
	}{
		{TrueMonitor{}, "true_monitor", statechart.RoleMonitor},
		{ConstMonitor{}, "const_monitor", statechart.RoleMonitor},
		{FuncMonitor{}, "func_monitor", statechart.RoleMonitor},
		{FuncMonitor{Name: "gripper_closed"}, "gripper_closed", statechart.RoleMonitor},
		{Print{}, "print", statechart.RolePayload},
		{EndMotion{}, "end_motion", statechart.RoleCompletion},
		{CancelMotion{}, "cancel_motion", statechart.RoleAbort},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.b.Kind())
			assert.Equal(t, tt.role, tt.b.Role())
		})
	}
}

func TestPrintWritesOnce(t *testing.T) {
	var buf bytes.Buffer
	p := Print{Message: "muh", Writer: &buf}

	for i := 0; i < 3; i++ {
		v, err := p.Observe(statechart.ObserveContext{Node: "cow", Evaluations: i})
		require.NoError(t, err)
		assert.Equal(t, trinary.True, v)
	}

	assert.Equal(t, "muh\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestPrintWriteError(t *testing.T) {
	p := Print{Message: "muh", Writer: failingWriter{}}

	_, err := p.Observe(statechart.ObserveContext{Node: "cow"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestCancelMotionCarriesErrorVerbatim(t *testing.T) {
	carried := errors.New("test")
	v, err := CancelMotion{Err: carried}.Observe(statechart.ObserveContext{})

	assert.Same(t, carried, err)
	assert.Equal(t, trinary.Unknown, v)

	_, err = CancelMotion{}.Observe(statechart.ObserveContext{})
	assert.ErrorIs(t, err, ErrMotionCancelled)
}

func TestFuncMonitorSeesWorld(t *testing.T) {
	type world struct{ gripperClosed bool }

	m := FuncMonitor{Fn: func(w any) trinary.Value {
		return trinary.FromBool(w.(*world).gripperClosed)
	}}

	w := &world{}
	v, err := m.Observe(statechart.ObserveContext{World: w})
	require.NoError(t, err)
	assert.Equal(t, trinary.False, v)

	w.gripperClosed = true
	v, err = m.Observe(statechart.ObserveContext{World: w})
	require.NoError(t, err)
	assert.Equal(t, trinary.True, v)

	v, err = FuncMonitor{}.Observe(statechart.ObserveContext{})
	require.NoError(t, err)
	assert.Equal(t, trinary.Unknown, v)
}

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"cancel_motion", "const_monitor", "end_motion", "print", "true_monitor"}, r.Kinds())
	assert.True(t, r.Has(ir.KindPrint))
	assert.False(t, r.Has("teleport"))
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	f := func(ir.NodeSpec, Env) (statechart.Behavior, error) { return TrueMonitor{}, nil }

	require.NoError(t, r.Register("gripper_closed", f))
	assert.True(t, r.Has("gripper_closed"))

	err := r.Register("gripper_closed", f)
	assert.ErrorIs(t, err, ErrKindExists)

	err = r.Register(ir.KindTrueMonitor, f)
	assert.ErrorIs(t, err, ErrKindExists)

	assert.Error(t, r.Register("", f))
	assert.Error(t, r.Register("nil_factory", nil))
}

func TestConstMonitorFactory(t *testing.T) {
	f, ok := DefaultRegistry.Lookup(ir.KindConstMonitor)
	require.True(t, ok)

	b, err := f(ir.NodeSpec{Name: "sensor", Kind: ir.KindConstMonitor, Value: "unknown"}, Env{})
	require.NoError(t, err)
	assert.Equal(t, ConstMonitor{Value: trinary.Unknown}, b)

	_, err = f(ir.NodeSpec{Name: "sensor", Kind: ir.KindConstMonitor, Value: "maybe"}, Env{})
	assert.Error(t, err)
}
