package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motionchart/internal/ir"
)

func TestReadTraceRoundTrip(t *testing.T) {
	s := createTestStore(t)
	want := seedRun(t, s, "run-1")

	got, err := s.ReadTrace(context.Background(), "run-1", nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	wantHash, err := ir.TraceHash(want)
	require.NoError(t, err)
	gotHash, err := ir.TraceHash(got)
	require.NoError(t, err)
	assert.Equal(t, wantHash, gotHash)
}

func TestReadTraceEmpty(t *testing.T) {
	s := createTestStore(t)
	got, err := s.ReadTrace(context.Background(), "missing", nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReadTraceNodeFilter(t *testing.T) {
	s := createTestStore(t)
	seedRun(t, s, "run-1")

	got, err := s.ReadTrace(context.Background(), "run-1", NodeFilter("done"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, tick := range got {
		require.Len(t, tick.Nodes, 1)
		assert.Equal(t, "done", tick.Nodes[0].Name)
	}
	assert.Equal(t, "NOT_STARTED", got[0].Nodes[0].LifeCycle)
	assert.Equal(t, "true", got[2].Nodes[0].Observation)
}

func TestReadTraceDropsTicksWithoutMatch(t *testing.T) {
	s := createTestStore(t)
	seedRun(t, s, "run-1")

	filter := And{Predicates: []Predicate{
		NodeFilter("done"),
		Equals{Column: ColumnLifeCycle, Value: ir.String("RUNNING")},
	}}
	got, err := s.ReadTrace(context.Background(), "run-1", filter)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Tick)
	assert.Equal(t, int64(3), got[1].Tick)
}

func TestReadTraceTickRange(t *testing.T) {
	s := createTestStore(t)
	seedRun(t, s, "run-1")

	got, err := s.ReadTrace(context.Background(), "run-1", TickRange{From: 2, To: 2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].Tick)
	assert.Len(t, got[0].Nodes, 2)
	assert.Equal(t, []string{"done"}, got[0].Started)
}

func TestReadTraceBadFilter(t *testing.T) {
	s := createTestStore(t)
	seedRun(t, s, "run-1")

	_, err := s.ReadTrace(context.Background(), "run-1", Equals{Column: "name; DROP TABLE runs", Value: ir.String("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown column")
}

func TestCompilePredicate(t *testing.T) {
	tests := []struct {
		name       string
		pred       Predicate
		wantSQL    string
		wantParams []any
		wantErr    string
	}{
		{name: "nil", pred: nil, wantSQL: "1 = 1"},
		{
			name:       "equals",
			pred:       Equals{Column: ColumnObservation, Value: ir.String("true")},
			wantSQL:    "ns.observation = ?",
			wantParams: []any{"true"},
		},
		{
			name:       "pointer equals",
			pred:       &Equals{Column: ColumnKind, Value: ir.String("print")},
			wantSQL:    "ns.kind = ?",
			wantParams: []any{"print"},
		},
		{
			name:       "node filter normalizes",
			pred:       NodeFilter("cafe\u0301"),
			wantSQL:    "ns.name = ?",
			wantParams: []any{"caf\u00e9"},
		},
		{name: "open range", pred: TickRange{}, wantSQL: "1 = 1"},
		{name: "from only", pred: TickRange{From: 3}, wantSQL: "ns.tick >= ?", wantParams: []any{int64(3)}},
		{
			name:       "closed range",
			pred:       TickRange{From: 1, To: 4},
			wantSQL:    "ns.tick >= ? AND ns.tick <= ?",
			wantParams: []any{int64(1), int64(4)},
		},
		{name: "empty and", pred: And{}, wantSQL: "1 = 1"},
		{
			name: "and",
			pred: And{Predicates: []Predicate{
				NodeFilter("gate"),
				TickRange{To: 9},
			}},
			wantSQL:    "(ns.name = ?) AND (ns.tick <= ?)",
			wantParams: []any{"gate", int64(9)},
		},
		{name: "inverted range", pred: TickRange{From: 5, To: 2}, wantErr: "empty tick range"},
		{name: "negative range", pred: TickRange{From: -1}, wantErr: "must be >= 0"},
		{name: "array value", pred: Equals{Column: ColumnNode, Value: ir.Array{}}, wantErr: "cannot be used as SQL parameter"},
		{name: "nil value", pred: Equals{Column: ColumnNode}, wantErr: "nil value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := compilePredicate(tt.pred)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}
