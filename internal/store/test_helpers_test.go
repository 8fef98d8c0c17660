package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/motionchart/internal/ir"
)

// createTestStore creates a new store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testChart() ir.ChartSpec {
	return ir.ChartSpec{
		Name:        "pick",
		Description: "pick an object",
		Nodes: []ir.NodeSpec{
			{Name: "gate", Kind: ir.KindTrueMonitor},
			{Name: "done", Kind: ir.KindEndMotion, Start: "gate"},
		},
	}
}

func createTestRun(id string) ir.RunRecord {
	return ir.RunRecord{
		ID:            id,
		Chart:         "pick",
		ChartHash:     ir.MustChartHash(testChart()),
		Status:        ir.StatusRunning,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
}

func createTestTick(runID string, tick int64, gateLC, gateObs, doneLC string) ir.TickRecord {
	return ir.TickRecord{
		RunID:    runID,
		Tick:     tick,
		Status:   ir.StatusContinuing,
		Started:  []string{},
		Observed: []string{},
		Nodes: []ir.NodeState{
			{Name: "gate", Kind: ir.KindTrueMonitor, LifeCycle: gateLC, Observation: gateObs},
			{Name: "done", Kind: ir.KindEndMotion, LifeCycle: doneLC, Observation: "unknown"},
		},
	}
}

// seedRun writes a three-tick run of testChart.
func seedRun(t *testing.T, s *Store, id string) []ir.TickRecord {
	t.Helper()
	ctx := context.Background()
	run := createTestRun(id)
	require.NoError(t, s.BeginRun(ctx, run, testChart()))

	t1 := createTestTick(id, 1, "RUNNING", "unknown", "NOT_STARTED")
	t1.Started = []string{"gate"}
	t2 := createTestTick(id, 2, "RUNNING", "true", "RUNNING")
	t2.Started = []string{"done"}
	t2.Observed = []string{"gate"}
	t3 := createTestTick(id, 3, "RUNNING", "true", "RUNNING")
	t3.Status = ir.StatusCompleted
	t3.Observed = []string{"done"}
	t3.Nodes[1].Observation = "true"

	ticks := []ir.TickRecord{t1, t2, t3}
	for _, tr := range ticks {
		require.NoError(t, s.RecordTick(ctx, tr))
	}

	run.Status = ir.StatusCompleted
	run.Ticks = 3
	require.NoError(t, s.EndRun(ctx, run))
	return ticks
}
