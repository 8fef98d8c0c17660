package statechart

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/motionchart/internal/testutil"
	"github.com/roach88/motionchart/internal/trinary"
)

// stub is a configurable behaviour for tests inside the package.
type stub struct {
	role  Role
	value trinary.Value
	err   error
	seen  *[]ObserveContext
}

func (s stub) Kind() string { return "stub_" + s.role.String() }
func (s stub) Role() Role   { return s.role }

func (s stub) Observe(ctx ObserveContext) (trinary.Value, error) {
	if s.seen != nil {
		*s.seen = append(*s.seen, ctx)
	}
	return s.value, s.err
}

func gate() stub       { return stub{role: RoleMonitor, value: trinary.True} }
func completion() stub { return stub{role: RoleCompletion, value: trinary.True} }

func newTestEngine(opts ...Option) *Engine {
	return New(nil, append([]Option{WithLogger(testutil.DiscardLogger())}, opts...)...)
}

func mustAdd(t *testing.T, e *Engine, name string, b Behavior) NodeID {
	t.Helper()
	id, err := e.AddNode(name, b)
	require.NoError(t, err)
	return id
}

func mustTick(t *testing.T, e *Engine) Outcome {
	t.Helper()
	out, err := e.Tick()
	require.NoError(t, err)
	return out
}
